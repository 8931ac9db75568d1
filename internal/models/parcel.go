// internal/models/parcel.go
package models

// ParcelStatus is the numeric status stored on the parcels table.
type ParcelStatus int

const (
	ParcelPending ParcelStatus = iota
	ParcelConfirmed
	ParcelInTransit
	ParcelDelivered
	ParcelCancelled
)

func (s ParcelStatus) String() string {
	switch s {
	case ParcelPending:
		return "Pending"
	case ParcelConfirmed:
		return "Confirmed"
	case ParcelInTransit:
		return "In Transit"
	case ParcelDelivered:
		return "Delivered"
	case ParcelCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Parcel is a dispatch record whose sender and receiver can be notified.
type Parcel struct {
	ID                int64        `json:"id" db:"id"`
	WaybillNumber     string       `json:"waybillNumber" db:"waybill_number"`
	Sender            string       `json:"sender" db:"sender"`
	SenderTelephone   string       `json:"senderTelephone" db:"sender_telephone"`
	Receiver          string       `json:"receiver" db:"receiver"`
	ReceiverTelephone string       `json:"receiverTelephone" db:"receiver_telephone"`
	Destination       string       `json:"destination" db:"destination"`
	Branch            string       `json:"branch,omitempty" db:"branch"`
	Status            ParcelStatus `json:"status" db:"status"`
}

func (p Parcel) StatusLabel() string {
	return p.Status.String()
}
