// internal/dispatchlog/entry.go
package dispatchlog

import (
	"wms-dispatch/internal/models"
	"wms-dispatch/internal/sms"
)

// Entries flattens a batch into one log entry per result, in result order.
func Entries(batch *sms.BatchResult) []models.DispatchLogEntry {
	out := make([]models.DispatchLogEntry, 0, len(batch.Results))
	for _, r := range batch.Results {
		e := models.DispatchLogEntry{
			ResultID:   r.ID,
			BatchID:    batch.BatchID,
			BatchKind:  batch.Kind,
			TemplateID: batch.TemplateID,
			Waybill:    r.Waybill,
			Role:       string(r.Role),
			Recipient:  r.Recipient,
			Phone:      r.Phone,
			Status:     string(r.Status),
			Message:    r.Message,
			MsgID:      r.MsgID,
			Cost:       r.Cost,
			TestMode:   batch.TestMode,
			SentAt:     r.SentAt,
		}
		if r.ParcelID != 0 {
			id := r.ParcelID
			e.ParcelID = &id
		}
		out = append(out, e)
	}
	return out
}
