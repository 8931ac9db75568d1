// internal/models/notification.go
package models

import "time"

// NotificationType names the parcel lifecycle events customers are told about.
type NotificationType string

const (
	NotificationCreated        NotificationType = "created"
	NotificationDispatched     NotificationType = "dispatched"
	NotificationDelivered      NotificationType = "delivered"
	NotificationReadyForPickup NotificationType = "ready_for_pickup"
)

// DispatchLogEntry is one SMS attempt as written to the dispatch log.
type DispatchLogEntry struct {
	ResultID   string    `json:"resultId" db:"result_id"`
	BatchID    string    `json:"batchId" db:"batch_id"`
	BatchKind  string    `json:"batchKind" db:"batch_kind"`
	TemplateID string    `json:"templateId,omitempty" db:"template_id"`
	ParcelID   *int64    `json:"parcelId,omitempty" db:"parcel_id"`
	Waybill    string    `json:"waybill,omitempty" db:"waybill"`
	Role       string    `json:"role,omitempty" db:"role"`
	Recipient  string    `json:"recipient,omitempty" db:"recipient"`
	Phone      string    `json:"phone" db:"phone"`
	Status     string    `json:"status" db:"status"`
	Message    string    `json:"message" db:"message"`
	MsgID      string    `json:"msgId,omitempty" db:"msg_id"`
	Cost       *float64  `json:"cost,omitempty" db:"cost"`
	TestMode   bool      `json:"testMode" db:"test_mode"`
	SentAt     time.Time `json:"sentAt" db:"sent_at"`
}
