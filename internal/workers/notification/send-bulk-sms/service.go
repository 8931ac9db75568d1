// internal/workers/notification/send-bulk-sms/service.go

// Package sendbulksms sends one free-text message to a list of phone numbers.
package sendbulksms

import (
	"context"
	stderrors "errors"
	"fmt"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/sms"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	workflow BulkSender
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		workflow: deps.Workflow,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	s.logger.Info("Executing bulk SMS", map[string]interface{}{
		"recipients": len(input.PhoneNumbers),
	})

	if len(input.PhoneNumbers) > s.config.MaxRecipients {
		return nil, errors.NewInputValidationFailedError(
			fmt.Sprintf("%d phone numbers exceed the limit of %d", len(input.PhoneNumbers), s.config.MaxRecipients))
	}

	testMode := s.config.DefaultTestMode
	if input.TestMode != nil {
		testMode = *input.TestMode
	}

	batch, err := s.workflow.SendBulk(ctx, sms.BulkRequest{
		PhoneNumbers: input.PhoneNumbers,
		Message:      input.Message,
		Options:      sms.SendOptions{Test: testMode},
	})
	if err != nil {
		var gateErr *sms.ValidationError
		if stderrors.As(err, &gateErr) {
			return nil, errors.NewPreSendValidationError(gateErr.Reasons)
		}
		return nil, err
	}

	return &Output{
		BatchID:   batch.BatchID,
		Total:     len(batch.Results),
		Succeeded: batch.Succeeded,
		Failed:    batch.Failed,
		TestMode:  batch.TestMode,
		Results:   batch.Results,
	}, nil
}

func (s *Service) TestConnection(_ context.Context) error {
	if s.workflow == nil {
		return fmt.Errorf("sms workflow not configured")
	}
	return nil
}
