// internal/sms/recipient.go
package sms

import (
	"fmt"
	"strings"

	"wms-dispatch/internal/models"
)

// Role is the party of a parcel a message goes to.
type Role string

const (
	RoleSender   Role = "sender"
	RoleReceiver Role = "receiver"
)

// Recipients selects which parties of each parcel are notified.
type Recipients string

const (
	RecipientsBoth     Recipients = "both"
	RecipientsSender   Recipients = "sender"
	RecipientsReceiver Recipients = "receiver"
)

// ParseRecipients accepts sender, receiver or both. Empty means both.
func ParseRecipients(s string) (Recipients, error) {
	switch Recipients(strings.ToLower(strings.TrimSpace(s))) {
	case "", RecipientsBoth:
		return RecipientsBoth, nil
	case RecipientsSender:
		return RecipientsSender, nil
	case RecipientsReceiver:
		return RecipientsReceiver, nil
	default:
		return "", fmt.Errorf("unknown recipients %q: want sender, receiver or both", s)
	}
}

// Roles returns the roles in send order.
func (r Recipients) Roles() []Role {
	switch r {
	case RecipientsSender:
		return []Role{RoleSender}
	case RecipientsReceiver:
		return []Role{RoleReceiver}
	default:
		return []Role{RoleSender, RoleReceiver}
	}
}

// Recipient is one party of one parcel, built for a single send.
type Recipient struct {
	Phone       string
	DisplayName string
	Role        Role
	ParcelID    int64
	Waybill     string
	Fields      map[string]string
}

// RecipientFor builds the recipient and its template fields for one role.
func RecipientFor(p models.Parcel, role Role) Recipient {
	phone, name := p.SenderTelephone, p.Sender
	if role == RoleReceiver {
		phone, name = p.ReceiverTelephone, p.Receiver
	}

	return Recipient{
		Phone:       phone,
		DisplayName: name,
		Role:        role,
		ParcelID:    p.ID,
		Waybill:     p.WaybillNumber,
		Fields: map[string]string{
			"name":        name,
			"waybill":     p.WaybillNumber,
			"destination": p.Destination,
			"sender":      p.Sender,
			"receiver":    p.Receiver,
			"status":      p.StatusLabel(),
		},
	}
}

// Label is the "Name (phone)" tag shown next to a result.
func (r Recipient) Label() string {
	if r.DisplayName == "" {
		return r.Phone
	}
	return fmt.Sprintf("%s (%s)", r.DisplayName, r.Phone)
}
