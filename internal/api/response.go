// internal/api/response.go
package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/sms"
)

// APIResponse is the envelope of every JSON reply.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, status int, resp APIResponse) {
	resp.Status = "error"
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, APIResponse{
		Message: msg,
		Code:    string(errors.ErrCodeInputValidationFailed),
	})
}

// writeFailure maps domain errors onto HTTP statuses.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var gateErr *sms.ValidationError
	if stderrors.As(err, &gateErr) {
		writeError(w, http.StatusUnprocessableEntity, APIResponse{
			Message: "Cannot send messages",
			Code:    string(errors.ErrCodePreSendValidationFailed),
			Errors:  gateErr.Reasons,
		})
		return
	}

	stdErr := errors.Normalize(err)
	status := statusFor(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"code":   string(stdErr.Code),
			"error":  err,
		})
	}

	resp := APIResponse{Message: stdErr.Message, Code: string(stdErr.Code)}
	if status < http.StatusInternalServerError && stdErr.Details != "" {
		resp.Errors = []string{stdErr.Details}
	}
	writeError(w, status, resp)
}

func statusFor(code errors.ErrorCode) int {
	switch {
	case code == errors.ErrCodeInputValidationFailed,
		code == errors.ErrCodeInvalidTimeoutConfig:
		return http.StatusBadRequest
	case code == errors.ErrCodePreSendValidationFailed:
		return http.StatusUnprocessableEntity
	case code == errors.ErrCodeSMSConfigInvalid:
		return http.StatusServiceUnavailable
	case code == errors.ErrCodeQueryTimeout:
		return http.StatusGatewayTimeout
	case strings.HasSuffix(string(code), "_NOT_FOUND"):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst)
}
