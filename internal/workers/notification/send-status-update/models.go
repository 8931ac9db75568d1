// internal/workers/notification/send-status-update/models.go
package sendstatusupdate

import (
	"context"

	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/models"
	"wms-dispatch/internal/sms"
)

type Input struct {
	ParcelID       int64  `json:"parcelId"`
	NewStatus      string `json:"newStatus"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
	TestMode       *bool  `json:"testMode,omitempty"`
}

type Output struct {
	BatchID          string           `json:"batchId"`
	Waybill          string           `json:"waybill"`
	NewStatus        string           `json:"newStatus"`
	SenderNotified   bool             `json:"senderNotified"`
	ReceiverNotified bool             `json:"receiverNotified"`
	Results          []sms.SendResult `json:"results"`
}

type ParcelGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Parcel, error)
}

type StatusUpdateSender interface {
	SendStatusUpdate(ctx context.Context, req sms.StatusUpdateRequest) (*sms.BatchResult, error)
}

type ServiceDependencies struct {
	Logger   logger.Logger
	Parcels  ParcelGetter
	Workflow StatusUpdateSender
}
