// internal/sms/phone.go
package sms

import (
	"regexp"

	"wms-dispatch/internal/models"
)

var (
	nonDigit    = regexp.MustCompile(`\D`)
	validMobile = regexp.MustCompile(`^254\d{9}$`)
)

// NormalizePhone converts a Kenyan mobile number to the 254XXXXXXXXX form the
// gateway expects. Numbers it does not recognise are returned as digits only.
func NormalizePhone(raw string) string {
	cleaned := nonDigit.ReplaceAllString(raw, "")

	switch {
	case len(cleaned) > 0 && cleaned[0] == '0':
		return "254" + cleaned[1:]
	case len(cleaned) >= 3 && cleaned[:3] == "254":
		return cleaned
	case len(cleaned) == 9:
		return "254" + cleaned
	default:
		return cleaned
	}
}

// ValidatePhone reports whether raw normalizes to 254 followed by nine digits.
func ValidatePhone(raw string) bool {
	return validMobile.MatchString(NormalizePhone(raw))
}

// PhoneStatus summarizes which of a parcel's numbers can be messaged.
type PhoneStatus string

const (
	PhoneBothValid    PhoneStatus = "Both Valid"
	PhoneSenderOnly   PhoneStatus = "Sender Only"
	PhoneReceiverOnly PhoneStatus = "Receiver Only"
	PhoneNoneValid    PhoneStatus = "No Valid Phone"
)

func PhoneStatusOf(p models.Parcel) PhoneStatus {
	sender := ValidatePhone(p.SenderTelephone)
	receiver := ValidatePhone(p.ReceiverTelephone)

	switch {
	case sender && receiver:
		return PhoneBothValid
	case sender:
		return PhoneSenderOnly
	case receiver:
		return PhoneReceiverOnly
	default:
		return PhoneNoneValid
	}
}

// HasValidPhone is true when at least one party can be texted.
func HasValidPhone(p models.Parcel) bool {
	return ValidatePhone(p.SenderTelephone) || ValidatePhone(p.ReceiverTelephone)
}
