// internal/sms/result.go
package sms

import "time"

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// SendResult is the outcome of one send attempt. It is never modified after
// the dispatcher creates it.
type SendResult struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	MsgID     string    `json:"msgId,omitempty"`
	Cost      *float64  `json:"cost,omitempty"`
	Balance   *float64  `json:"balance,omitempty"`
	Recipient string    `json:"recipient,omitempty"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role,omitempty"`
	ParcelID  int64     `json:"parcelId,omitempty"`
	Waybill   string    `json:"parcel,omitempty"`
	SentAt    time.Time `json:"sentAt"`
}

func (r SendResult) OK() bool {
	return r.Status == StatusSuccess
}

const (
	BatchKindParcels      = "parcels"
	BatchKindBulk         = "bulk"
	BatchKindStatusUpdate = "status_update"
)

// BatchResult accumulates one result per recipient, in processing order.
type BatchResult struct {
	BatchID    string       `json:"batchId"`
	Kind       string       `json:"kind"`
	TemplateID string       `json:"templateId,omitempty"`
	TestMode   bool         `json:"testMode"`
	Results    []SendResult `json:"results"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
}

func (b *BatchResult) add(r SendResult) {
	b.Results = append(b.Results, r)
	if r.OK() {
		b.Succeeded++
	} else {
		b.Failed++
	}
}

// Failures returns the error results.
func (b *BatchResult) Failures() []SendResult {
	var out []SendResult
	for _, r := range b.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

func (b *BatchResult) Duration() time.Duration {
	return b.FinishedAt.Sub(b.StartedAt)
}
