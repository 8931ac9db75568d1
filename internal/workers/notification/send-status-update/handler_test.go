// internal/workers/notification/send-status-update/handler_test.go
package sendstatusupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/models"
	"wms-dispatch/internal/sms"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockParcelGetter struct {
	GetByIDFunc func(ctx context.Context, id int64) (*models.Parcel, error)
}

func (m *MockParcelGetter) GetByID(ctx context.Context, id int64) (*models.Parcel, error) {
	return m.GetByIDFunc(ctx, id)
}

// MockGateway stands in for the SMS gateway behind a real workflow.
type MockGateway struct {
	sent    []string
	failFor string
}

func (m *MockGateway) Send(_ context.Context, phone, message string, _ sms.SendOptions) (*sms.GatewayResponse, error) {
	m.sent = append(m.sent, phone+": "+message)
	if m.failFor != "" && strings.HasSuffix(sms.NormalizePhone(phone), m.failFor) {
		return nil, fmt.Errorf("HTTP error! status: 503")
	}
	return &sms.GatewayResponse{Status: "success", Message: "Message Sent"}, nil
}

// ==========================
// Test Helpers
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		CustomHeaders:      "{}",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func testParcel() *models.Parcel {
	return &models.Parcel{
		ID:                7,
		WaybillNumber:     "WB700",
		Sender:            "Amina",
		SenderTelephone:   "0712345678",
		Receiver:          "Brian",
		ReceiverTelephone: "0722000111",
		Destination:       "Eldoret",
		Status:            models.ParcelInTransit,
	}
}

func newTestHandler(t *testing.T, parcel *models.Parcel, gateway *MockGateway, configErrs []string) *Handler {
	log := logger.NewTestLogger(t)
	workflow := sms.NewWorkflow(sms.DefaultCatalog(), sms.NewDispatcher(gateway, 0, log), configErrs, log)

	getter := &MockParcelGetter{GetByIDFunc: func(_ context.Context, id int64) (*models.Parcel, error) {
		if parcel == nil || id != parcel.ID {
			return nil, errors.NewParcelNotFoundError(id)
		}
		p := *parcel
		return &p, nil
	}}

	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: true, MaxJobsActive: 1, Timeout: time.Minute},
		Logger:       log,
		Parcels:      getter,
		Workflow:     workflow,
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Tests
// ==========================

func TestNewHandler_RequiresDependencies(t *testing.T) {
	_, err := NewHandler(HandlerOptions{})
	assert.EqualError(t, err, "parcel repository and sms workflow are required")

	_, err = NewHandler(HandlerOptions{CustomConfig: &Config{MaxJobsActive: 1}})
	assert.EqualError(t, err, "invalid configuration for send-status-update: timeout must be positive")
}

func TestHandler_NotifiesSenderThenReceiver(t *testing.T) {
	gateway := &MockGateway{}
	h := newTestHandler(t, testParcel(), gateway, nil)

	out, err := h.handle(context.Background(), createMockJob(1, map[string]interface{}{
		"parcelId":       7,
		"newStatus":      "delivered",
		"additionalInfo": "Signed for by the gate office",
		"testMode":       true,
	}))
	require.NoError(t, err)

	assert.Equal(t, "WB700", out.Waybill)
	assert.True(t, out.SenderNotified)
	assert.True(t, out.ReceiverNotified)
	require.Len(t, out.Results, 2)
	assert.Equal(t, sms.RoleSender, out.Results[0].Role)
	assert.Equal(t, sms.RoleReceiver, out.Results[1].Role)

	require.Len(t, gateway.sent, 2)
	assert.Contains(t, gateway.sent[0], "Dear Amina, Your parcel (WB700) has been delivered to Brian at Eldoret. Signed for by the gate office")
	assert.Contains(t, gateway.sent[1], "Dear Brian, Your parcel (WB700) has been delivered. Signed for by the gate office")
}

func TestHandler_PartialDelivery(t *testing.T) {
	gateway := &MockGateway{failFor: "722000111"}
	h := newTestHandler(t, testParcel(), gateway, nil)

	out, err := h.Execute(context.Background(), &Input{ParcelID: 7, NewStatus: "in_transit"})
	require.NoError(t, err)
	assert.True(t, out.SenderNotified)
	assert.False(t, out.ReceiverNotified)
	assert.Equal(t, "Failed to send to receiver: HTTP error! status: 503", out.Results[1].Message)
}

func TestHandler_Errors(t *testing.T) {
	badPhone := testParcel()
	badPhone.ReceiverTelephone = "12345"

	tests := []struct {
		name       string
		parcel     *models.Parcel
		configErrs []string
		variables  map[string]interface{}
		wantCode   errors.ErrorCode
	}{
		{
			name:      "missing status",
			parcel:    testParcel(),
			variables: map[string]interface{}{"parcelId": 7},
			wantCode:  errors.ErrCodeInputValidationFailed,
		},
		{
			name:      "unknown parcel",
			parcel:    testParcel(),
			variables: map[string]interface{}{"parcelId": 8, "newStatus": "confirmed"},
			wantCode:  errors.ErrCodeParcelNotFound,
		},
		{
			name:      "invalid receiver phone",
			parcel:    badPhone,
			variables: map[string]interface{}{"parcelId": 7, "newStatus": "confirmed"},
			wantCode:  errors.ErrCodePreSendValidationFailed,
		},
		{
			name:       "gateway not configured",
			parcel:     testParcel(),
			configErrs: []string{"SMS Password is not configured"},
			variables:  map[string]interface{}{"parcelId": 7, "newStatus": "confirmed"},
			wantCode:   errors.ErrCodePreSendValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &MockGateway{}
			h := newTestHandler(t, tt.parcel, gateway, tt.configErrs)

			_, err := h.handle(context.Background(), createMockJob(2, tt.variables))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
			assert.Empty(t, gateway.sent)
		})
	}
}
