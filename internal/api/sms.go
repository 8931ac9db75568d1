// internal/api/sms.go
package api

import (
	"net/http"
	"strconv"
	"strings"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/models"
	"wms-dispatch/internal/parcels"
	"wms-dispatch/internal/sms"

	"github.com/go-chi/chi/v5"
)

type parcelBatchRequest struct {
	ParcelIDs     []int64 `json:"parcelIds"`
	TemplateID    string  `json:"templateId"`
	CustomMessage string  `json:"customMessage"`
	Recipients    string  `json:"recipients"`
	TestMode      *bool   `json:"testMode"`
}

type bulkRequest struct {
	PhoneNumbers []string `json:"phoneNumbers"`
	Message      string   `json:"message"`
	TestMode     *bool    `json:"testMode"`
}

type statusUpdateRequest struct {
	NewStatus      string `json:"newStatus"`
	AdditionalInfo string `json:"additionalInfo"`
	TestMode       *bool  `json:"testMode"`
}

type parcelView struct {
	models.Parcel
	StatusLabel string          `json:"statusLabel"`
	PhoneStatus sms.PhoneStatus `json:"phoneStatus"`
}

type previewMessage struct {
	ParcelID  int64    `json:"parcelId"`
	Waybill   string   `json:"waybill"`
	Role      sms.Role `json:"role"`
	Recipient string   `json:"recipient"`
	Phone     string   `json:"phone"`
	Message   string   `json:"message"`
}

func (s *Server) testMode(v *bool) bool {
	if v != nil {
		return *v
	}
	return s.opts.DefaultTestMode
}

// gatewayUnavailable answers 503 when the gateway configuration blocks every send.
func (s *Server) gatewayUnavailable(w http.ResponseWriter) bool {
	errs := s.sms.ConfigErrors()
	if len(errs) == 0 {
		return false
	}
	writeError(w, http.StatusServiceUnavailable, APIResponse{
		Message: "SMS service is not configured",
		Code:    string(errors.ErrCodeSMSConfigInvalid),
		Errors:  errs,
	})
	return true
}

func (s *Server) smsConfig(w http.ResponseWriter, _ *http.Request) {
	errs := s.sms.ConfigErrors()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

func (s *Server) templates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sms.Catalog().List())
}

func (s *Server) validatePhone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"phone":      req.Phone,
		"normalized": sms.NormalizePhone(req.Phone),
		"valid":      sms.ValidatePhone(req.Phone),
	})
}

func (s *Server) listParcels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := parcels.Filter{
		Branch:      q.Get("branch"),
		Search:      strings.TrimSpace(q.Get("search")),
		Destination: q.Get("destination"),
		Phone:       parcels.PhoneFilter(q.Get("phone")),
	}

	switch f.Phone {
	case parcels.PhoneAny, parcels.PhoneValid, parcels.PhoneInvalid:
	default:
		badRequest(w, "phone must be valid or invalid")
		return
	}

	if v := q.Get("status"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < int(models.ParcelPending) || n > int(models.ParcelCancelled) {
			badRequest(w, "status must be between 0 and 4")
			return
		}
		status := models.ParcelStatus(n)
		f.Status = &status
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}

	list, err := s.parcels.List(r.Context(), f)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	out := make([]parcelView, len(list))
	for i, p := range list {
		out[i] = parcelView{Parcel: p, StatusLabel: p.StatusLabel(), PhoneStatus: sms.PhoneStatusOf(p)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) destinations(w http.ResponseWriter, r *http.Request) {
	list, err := s.parcels.Destinations(r.Context(), r.URL.Query().Get("branch"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// parcelBatch loads the selected parcels. An empty selection is left to the
// pre-send gate so the reply lists every problem at once.
func (s *Server) parcelBatch(w http.ResponseWriter, r *http.Request) (sms.ParcelBatchRequest, bool) {
	var req parcelBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return sms.ParcelBatchRequest{}, false
	}

	recipients, err := sms.ParseRecipients(req.Recipients)
	if err != nil {
		badRequest(w, err.Error())
		return sms.ParcelBatchRequest{}, false
	}

	var selected []models.Parcel
	if len(req.ParcelIDs) > 0 {
		selected, err = s.parcels.GetByIDs(r.Context(), req.ParcelIDs)
		if err != nil {
			s.writeFailure(w, r, err)
			return sms.ParcelBatchRequest{}, false
		}
	}

	return sms.ParcelBatchRequest{
		Parcels:       selected,
		TemplateID:    req.TemplateID,
		CustomMessage: req.CustomMessage,
		Recipients:    recipients,
		Options:       sms.SendOptions{Test: s.testMode(req.TestMode)},
	}, true
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parcelBatch(w, r)
	if !ok {
		return
	}

	jobs, errs := s.sms.Preview(req)
	messages := make([]previewMessage, len(jobs))
	for i, j := range jobs {
		messages[i] = previewMessage{
			ParcelID:  j.Recipient.ParcelID,
			Waybill:   j.Recipient.Waybill,
			Role:      j.Recipient.Role,
			Recipient: j.Recipient.DisplayName,
			Phone:     sms.NormalizePhone(j.Recipient.Phone),
			Message:   j.Message,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"canSend":  len(errs) == 0,
		"errors":   errs,
	})
}

func (s *Server) sendParcels(w http.ResponseWriter, r *http.Request) {
	if s.gatewayUnavailable(w) {
		return
	}
	req, ok := s.parcelBatch(w, r)
	if !ok {
		return
	}

	batch, err := s.sms.SendParcels(r.Context(), req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) sendBulk(w http.ResponseWriter, r *http.Request) {
	if s.gatewayUnavailable(w) {
		return
	}

	var req bulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	batch, err := s.sms.SendBulk(r.Context(), sms.BulkRequest{
		PhoneNumbers: req.PhoneNumbers,
		Message:      req.Message,
		Options:      sms.SendOptions{Test: s.testMode(req.TestMode)},
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) statusUpdate(w http.ResponseWriter, r *http.Request) {
	if s.gatewayUnavailable(w) {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "invalid parcel id")
		return
	}

	var req statusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	parcel, err := s.parcels.GetByID(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	batch, err := s.sms.SendStatusUpdate(r.Context(), sms.StatusUpdateRequest{
		Parcel:         *parcel,
		NewStatus:      req.NewStatus,
		AdditionalInfo: req.AdditionalInfo,
		Options:        sms.SendOptions{Test: s.testMode(req.TestMode)},
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}
