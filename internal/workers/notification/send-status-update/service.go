// internal/workers/notification/send-status-update/service.go

// Package sendstatusupdate tells both parties of a parcel about a status change.
package sendstatusupdate

import (
	"context"
	stderrors "errors"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/sms"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	parcels  ParcelGetter
	workflow StatusUpdateSender
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		parcels:  deps.Parcels,
		workflow: deps.Workflow,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	parcel, err := s.parcels.GetByID(ctx, input.ParcelID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sending status update", map[string]interface{}{
		"parcelId":  parcel.ID,
		"waybill":   parcel.WaybillNumber,
		"newStatus": input.NewStatus,
	})

	testMode := s.config.DefaultTestMode
	if input.TestMode != nil {
		testMode = *input.TestMode
	}

	batch, err := s.workflow.SendStatusUpdate(ctx, sms.StatusUpdateRequest{
		Parcel:         *parcel,
		NewStatus:      input.NewStatus,
		AdditionalInfo: input.AdditionalInfo,
		Options:        sms.SendOptions{Test: testMode},
	})
	if err != nil {
		var gateErr *sms.ValidationError
		if stderrors.As(err, &gateErr) {
			return nil, errors.NewPreSendValidationError(gateErr.Reasons)
		}
		return nil, err
	}

	output := &Output{
		BatchID:   batch.BatchID,
		Waybill:   parcel.WaybillNumber,
		NewStatus: input.NewStatus,
		Results:   batch.Results,
	}
	for _, r := range batch.Results {
		if !r.OK() {
			continue
		}
		switch r.Role {
		case sms.RoleSender:
			output.SenderNotified = true
		case sms.RoleReceiver:
			output.ReceiverNotified = true
		}
	}
	return output, nil
}
