// internal/workers/notification/send-parcel-sms/models.go
package sendparcelsms

import (
	"context"

	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/models"
	"wms-dispatch/internal/sms"
)

type Input struct {
	ParcelIDs     []int64 `json:"parcelIds"`
	TemplateID    string  `json:"templateId"`
	CustomMessage string  `json:"customMessage,omitempty"`
	Recipients    string  `json:"recipients,omitempty"` // both | sender | receiver
	TestMode      *bool   `json:"testMode,omitempty"`
}

type Output struct {
	BatchID          string           `json:"batchId"`
	TemplateID       string           `json:"templateId"`
	Total            int              `json:"total"`
	Succeeded        int              `json:"succeeded"`
	Failed           int              `json:"failed"`
	TestMode         bool             `json:"testMode"`
	Results          []sms.SendResult `json:"results"`
	FailureReported  bool             `json:"failureReported,omitempty"`
	FailedRecipients []string         `json:"failedRecipients,omitempty"`
}

type ParcelLoader interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Parcel, error)
}

type ParcelSender interface {
	SendParcels(ctx context.Context, req sms.ParcelBatchRequest) (*sms.BatchResult, error)
}

// FailureReporter e-mails a summary of failed sends.
type FailureReporter interface {
	SendText(ctx context.Context, to []string, subject, body string) error
}

type ServiceDependencies struct {
	Logger   logger.Logger
	Parcels  ParcelLoader
	Workflow ParcelSender
	Reporter FailureReporter
}
