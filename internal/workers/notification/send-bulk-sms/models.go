// internal/workers/notification/send-bulk-sms/models.go
package sendbulksms

import (
	"context"

	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/sms"
)

type Input struct {
	PhoneNumbers []string `json:"phoneNumbers"`
	Message      string   `json:"message"`
	TestMode     *bool    `json:"testMode,omitempty"`
}

type Output struct {
	BatchID   string           `json:"batchId"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	TestMode  bool             `json:"testMode"`
	Results   []sms.SendResult `json:"results"`
}

type BulkSender interface {
	SendBulk(ctx context.Context, req sms.BulkRequest) (*sms.BatchResult, error)
}

type ServiceDependencies struct {
	Logger   logger.Logger
	Workflow BulkSender
}
