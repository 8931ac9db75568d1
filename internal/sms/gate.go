// internal/sms/gate.go
package sms

import (
	"fmt"
	"strings"

	"wms-dispatch/internal/models"
)

// ValidationError is returned when the pre-send gate refuses an operation.
// No message has been sent when it is returned.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "cannot send messages: " + strings.Join(e.Reasons, "; ")
}

// ParcelBatchRequest selects parcels, a template and which parties to notify.
type ParcelBatchRequest struct {
	Parcels       []models.Parcel
	TemplateID    string
	CustomMessage string
	Recipients    Recipients
	Options       SendOptions
}

// BulkRequest sends one custom message to a list of numbers.
type BulkRequest struct {
	PhoneNumbers []string
	Message      string
	Options      SendOptions
}

// StatusUpdateRequest notifies both parties of a parcel's new status.
type StatusUpdateRequest struct {
	Parcel         models.Parcel
	NewStatus      string
	AdditionalInfo string
	Options        SendOptions
}

// ValidateParcelBatch collects every reason the batch cannot start.
func ValidateParcelBatch(req ParcelBatchRequest, catalog *Catalog, configErrs []string) []string {
	var errs []string

	if len(req.Parcels) == 0 {
		errs = append(errs, "No parcels selected")
	}

	if _, ok := catalog.Get(req.TemplateID); !ok {
		errs = append(errs, fmt.Sprintf("Unknown message template: %s", req.TemplateID))
	} else if req.TemplateID == CustomTemplateID && strings.TrimSpace(req.CustomMessage) == "" {
		errs = append(errs, "Custom message cannot be empty")
	}

	for _, p := range req.Parcels {
		errs = append(errs, phoneErrors(p, req.Recipients.Roles())...)
	}

	return append(errs, configErrs...)
}

// ValidateBulk returns every reason a bulk send must be refused.
func ValidateBulk(req BulkRequest, configErrs []string) []string {
	var errs []string

	if len(req.PhoneNumbers) == 0 {
		errs = append(errs, "No phone numbers provided")
	}
	if strings.TrimSpace(req.Message) == "" {
		errs = append(errs, "Message cannot be empty")
	}
	for _, phone := range req.PhoneNumbers {
		if !ValidatePhone(phone) {
			errs = append(errs, fmt.Sprintf("Invalid phone number: %s", phone))
		}
	}

	return append(errs, configErrs...)
}

// ValidateStatusUpdate requires both phones to be valid and a status to be set.
func ValidateStatusUpdate(req StatusUpdateRequest, configErrs []string) []string {
	var errs []string

	if strings.TrimSpace(req.NewStatus) == "" {
		errs = append(errs, "New status cannot be empty")
	}
	errs = append(errs, phoneErrors(req.Parcel, RecipientsBoth.Roles())...)

	return append(errs, configErrs...)
}

func phoneErrors(p models.Parcel, roles []Role) []string {
	var errs []string
	for _, role := range roles {
		r := RecipientFor(p, role)
		if strings.TrimSpace(r.Phone) == "" || !ValidatePhone(r.Phone) {
			errs = append(errs, fmt.Sprintf("Invalid %s phone number for parcel %s", role, p.WaybillNumber))
		}
	}
	return errs
}
