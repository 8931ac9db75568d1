// internal/common/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name          string
		err           *StandardError
		wantCode      string
		wantRetries   int
		wantRetryable bool
	}{
		{
			name:        "pre-send gate is a business error",
			err:         NewPreSendValidationError([]string{"No parcels selected"}),
			wantCode:    "PRE_SEND_VALIDATION_FAILED",
			wantRetries: 0,
		},
		{
			name:          "query failures retry",
			err:           NewQueryExecutionFailedError("parcels_by_ids", fmt.Errorf("conn reset")),
			wantCode:      "QUERY_EXECUTION_FAILED",
			wantRetries:   3,
			wantRetryable: true,
		},
		{
			name:          "gateway failures retry twice",
			err:           NewSMSSendFailedError("254712345678", fmt.Errorf("HTTP error! status: 502")),
			wantCode:      "SMS_SEND_FAILED",
			wantRetries:   2,
			wantRetryable: true,
		},
		{
			name:     "unknown code falls back to itself",
			err:      &StandardError{Code: "SOMETHING_ELSE", Message: "x"},
			wantCode: "SOMETHING_ELSE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, tt.wantRetryable, bpmn.Retryable)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestPreSendValidationErrorCarriesReasons(t *testing.T) {
	reasons := []string{"No parcels selected", "SMS User ID is not configured"}
	err := NewPreSendValidationError(reasons)

	assert.Equal(t, reasons, err.Metadata["errors"])
	assert.Contains(t, err.Details, "No parcels selected; SMS User ID is not configured")

	vars := ConvertToBPMNError(err).ToErrorVariables()
	assert.Equal(t, reasons, vars["validationErrors"])
	assert.Equal(t, "PRE_SEND_VALIDATION_FAILED", vars["errorCode"])
}

func TestAsStandardErrorUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("load parcels: %w", NewParcelNotFoundError(7, 9))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeParcelNotFound, stdErr.Code)
	assert.Equal(t, "parcelIds: 7,9", stdErr.Details)
	assert.True(t, HasCode(wrapped, ErrCodeParcelNotFound))
	assert.False(t, HasCode(fmt.Errorf("plain"), ErrCodeParcelNotFound))
}

func TestNormalize(t *testing.T) {
	stdErr := Normalize(fmt.Errorf("boom"))
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), stdErr.Code)
	assert.Equal(t, "boom", stdErr.Details)

	orig := NewSessionNotFoundError("abc")
	assert.Same(t, orig, Normalize(orig))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeSMSSendFailed))
	assert.Equal(t, "TEMPLATE", GetErrorCategory(ErrCodeTemplateNotFound))
	assert.Equal(t, "SESSION", GetErrorCategory(ErrCodeSessionNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexingFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodePreSendValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory("EXTERNAL_SERVICE_ERROR"))
}
