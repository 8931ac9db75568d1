// internal/sms/messages.go
package sms

import (
	"fmt"
	"strings"

	"wms-dispatch/internal/models"
)

const closing = "Thank you for choosing NID Logistics Ltd."

var notificationTemplates = map[models.NotificationType]string{
	models.NotificationCreated:        "parcel_created",
	models.NotificationDispatched:     "parcel_dispatched",
	models.NotificationDelivered:      "parcel_delivered",
	models.NotificationReadyForPickup: "ready_for_pickup",
}

// TemplateForNotification maps a parcel lifecycle event to its template id.
func TemplateForNotification(kind models.NotificationType) (string, bool) {
	id, ok := notificationTemplates[kind]
	return id, ok
}

// ParcelMessage renders the lifecycle notification for one party of a parcel.
// Unknown kinds fall back to a generic status line.
func ParcelMessage(catalog *Catalog, p models.Parcel, kind models.NotificationType, role Role) string {
	r := RecipientFor(p, role)
	if id, ok := TemplateForNotification(kind); ok {
		if t, ok := catalog.Get(id); ok {
			return Render(t.Body, r.Fields)
		}
	}
	return fmt.Sprintf("Dear %s, Update on your parcel (%s): Status changed to %s. %s",
		r.DisplayName, p.WaybillNumber, p.StatusLabel(), closing)
}

// StatusUpdateMessage renders the text sent when a parcel changes status.
func StatusUpdateMessage(p models.Parcel, newStatus string, role Role, additionalInfo string) string {
	r := RecipientFor(p, role)

	var main string
	switch strings.ToLower(strings.TrimSpace(newStatus)) {
	case "pending":
		main = fmt.Sprintf("Your parcel (%s) is being processed", p.WaybillNumber)
	case "confirmed":
		main = fmt.Sprintf("Your parcel (%s) has been confirmed and is ready for dispatch", p.WaybillNumber)
	case "in_transit", "intransit", "in transit":
		main = fmt.Sprintf("Your parcel (%s) is in transit to %s", p.WaybillNumber, p.Destination)
	case "delivered":
		main = fmt.Sprintf("Your parcel (%s) has been delivered", p.WaybillNumber)
		if role == RoleSender {
			main += fmt.Sprintf(" to %s at %s", p.Receiver, p.Destination)
		}
	case "cancelled":
		main = fmt.Sprintf("Your parcel (%s) has been cancelled", p.WaybillNumber)
	default:
		main = fmt.Sprintf("Your parcel (%s) status has been updated to: %s", p.WaybillNumber, newStatus)
	}

	if info := strings.TrimSpace(additionalInfo); info != "" {
		main += ". " + info
	} else {
		main += "."
	}

	return fmt.Sprintf("Dear %s, %s %s", r.DisplayName, main, closing)
}
