// internal/workers/notification/send-parcel-sms/service.go

// Package sendparcelsms notifies the senders and receivers of selected parcels.
package sendparcelsms

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/sms"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	parcels  ParcelLoader
	workflow ParcelSender
	reporter FailureReporter
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		parcels:  deps.Parcels,
		workflow: deps.Workflow,
		reporter: deps.Reporter,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	s.logger.Info("Executing parcel SMS dispatch", map[string]interface{}{
		"parcelCount": len(input.ParcelIDs),
		"templateId":  input.TemplateID,
		"recipients":  input.Recipients,
	})

	recipients, err := sms.ParseRecipients(input.Recipients)
	if err != nil {
		return nil, errors.NewInputValidationFailedError(err.Error())
	}

	parcels, err := s.parcels.GetByIDs(ctx, input.ParcelIDs)
	if err != nil {
		return nil, err
	}

	testMode := s.config.DefaultTestMode
	if input.TestMode != nil {
		testMode = *input.TestMode
	}

	batch, err := s.workflow.SendParcels(ctx, sms.ParcelBatchRequest{
		Parcels:       parcels,
		TemplateID:    input.TemplateID,
		CustomMessage: input.CustomMessage,
		Recipients:    recipients,
		Options:       sms.SendOptions{Test: testMode},
	})
	if err != nil {
		var gateErr *sms.ValidationError
		if stderrors.As(err, &gateErr) {
			return nil, errors.NewPreSendValidationError(gateErr.Reasons)
		}
		return nil, err
	}

	output := &Output{
		BatchID:    batch.BatchID,
		TemplateID: batch.TemplateID,
		Total:      len(batch.Results),
		Succeeded:  batch.Succeeded,
		Failed:     batch.Failed,
		TestMode:   batch.TestMode,
		Results:    batch.Results,
	}
	for _, r := range batch.Failures() {
		output.FailedRecipients = append(output.FailedRecipients, r.Recipient)
	}

	if batch.Failed > 0 {
		output.FailureReported = s.reportFailures(ctx, batch)
	}

	s.logger.Info("Parcel SMS dispatch completed", map[string]interface{}{
		"batchId":   batch.BatchID,
		"succeeded": batch.Succeeded,
		"failed":    batch.Failed,
	})

	return output, nil
}

// reportFailures never fails the job; the batch has already been sent.
func (s *Service) reportFailures(ctx context.Context, batch *sms.BatchResult) bool {
	if s.reporter == nil || len(s.config.ReportRecipients) == 0 {
		return false
	}

	subject := fmt.Sprintf("SMS batch %s: %d of %d messages failed",
		batch.BatchID, batch.Failed, len(batch.Results))

	if err := s.reporter.SendText(ctx, s.config.ReportRecipients, subject, failureReport(batch)); err != nil {
		s.logger.Warn("Failed to send failure report", map[string]interface{}{
			"batchId": batch.BatchID,
			"error":   err.Error(),
		})
		return false
	}
	return true
}

func failureReport(batch *sms.BatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch: %s\nTemplate: %s\nTest mode: %t\nSucceeded: %d\nFailed: %d\n\n",
		batch.BatchID, batch.TemplateID, batch.TestMode, batch.Succeeded, batch.Failed)
	for _, r := range batch.Failures() {
		fmt.Fprintf(&b, "- %s %s (%s): %s\n", r.Waybill, r.Role, r.Phone, r.Message)
	}
	return b.String()
}

func (s *Service) TestConnection(_ context.Context) error {
	if s.parcels == nil {
		return fmt.Errorf("parcel repository not configured")
	}
	if s.workflow == nil {
		return fmt.Errorf("sms workflow not configured")
	}
	return nil
}
