// internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/models"
	"wms-dispatch/internal/parcels"
	"wms-dispatch/internal/session"
	"wms-dispatch/internal/sms"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fakes
// ==========================

type fakeParcels struct {
	byID       map[int64]models.Parcel
	lastFilter parcels.Filter
	listErr    error
}

func (f *fakeParcels) GetByID(_ context.Context, id int64) (*models.Parcel, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errors.NewParcelNotFoundError(id)
	}
	return &p, nil
}

func (f *fakeParcels) GetByIDs(_ context.Context, ids []int64) ([]models.Parcel, error) {
	out := make([]models.Parcel, 0, len(ids))
	var missing []int64
	for _, id := range ids {
		p, ok := f.byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, p)
	}
	if len(missing) > 0 {
		return nil, errors.NewParcelNotFoundError(missing...)
	}
	return out, nil
}

func (f *fakeParcels) List(_ context.Context, filter parcels.Filter) ([]models.Parcel, error) {
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []models.Parcel{f.byID[1], f.byID[2]}, nil
}

func (f *fakeParcels) Destinations(_ context.Context, _ string) ([]string, error) {
	return []string{"Kisumu", "Nakuru"}, nil
}

type fakeGateway struct {
	sent []string
}

func (g *fakeGateway) Send(_ context.Context, phone, _ string, _ sms.SendOptions) (*sms.GatewayResponse, error) {
	g.sent = append(g.sent, phone)
	return &sms.GatewayResponse{Status: "success", Message: "Message Sent", MsgID: fmt.Sprintf("m%d", len(g.sent))}, nil
}

// ==========================
// Test Helpers
// ==========================

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	server  *httptest.Server
	gateway *fakeGateway
	parcels *fakeParcels
}

func testParcels() map[int64]models.Parcel {
	return map[int64]models.Parcel{
		1: {ID: 1, WaybillNumber: "WB100", Sender: "Amina", SenderTelephone: "0712345678",
			Receiver: "Brian", ReceiverTelephone: "0722000111", Destination: "Nakuru", Status: models.ParcelInTransit},
		2: {ID: 2, WaybillNumber: "WB200", Sender: "Chao", SenderTelephone: "0733000222",
			Receiver: "Dina", ReceiverTelephone: "555", Destination: "Kisumu", Status: models.ParcelPending},
	}
}

func newTestEnv(t *testing.T, configErrs []string, checks map[string]ReadinessCheck) *testEnv {
	t.Helper()
	log := logger.NewTestLogger(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	manager, err := session.NewManager(session.DefaultTimeoutConfig(), session.NewRedisStore(client, time.Hour), log)
	require.NoError(t, err)

	gateway := &fakeGateway{}
	workflow := sms.NewWorkflow(sms.DefaultCatalog(), sms.NewDispatcher(gateway, 0, log), configErrs, log)
	store := &fakeParcels{byID: testParcels()}

	srv := NewServer(Dependencies{
		Sessions: manager,
		SMS:      workflow,
		Parcels:  store,
		Checks:   checks,
		Logger:   log,
	}, Options{DefaultTestMode: true})

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, gateway: gateway, parcels: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent && path != "/metrics" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// ==========================
// Health
// ==========================

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil, map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return fmt.Errorf("connection refused") },
	})

	status, body := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", body.Status)

	status, body = env.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, []string{"redis"}, body.Errors)

	status, _ = env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, status)
}

// ==========================
// Sessions
// ==========================

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, body := env.do(t, http.MethodGet, "/api/sessions/config", nil)
	require.Equal(t, http.StatusOK, status)
	var cfg map[string]int64
	decodeData(t, body, &cfg)
	assert.Equal(t, int64(30*60*1000), cfg["timeoutMs"])
	assert.Equal(t, int64(30*1000), cfg["warningMs"])

	status, body = env.do(t, http.MethodPost, "/api/sessions", loginRequest{UserID: "clerk-7"})
	require.Equal(t, http.StatusCreated, status)
	var sess sessionView
	decodeData(t, body, &sess)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "clerk-7", sess.UserID)
	assert.Greater(t, sess.RemainingMs, int64(29*60*1000))

	status, _ = env.do(t, http.MethodPost, "/api/sessions/"+sess.ID+"/activity", activityRequest{Type: "key-press"})
	assert.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodPost, "/api/sessions/"+sess.ID+"/activity", activityRequest{Type: "blink"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INPUT_VALIDATION_FAILED", body.Code)

	status, _ = env.do(t, http.MethodPost, "/api/sessions/"+sess.ID+"/extend", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodDelete, "/api/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = env.do(t, http.MethodGet, "/api/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SESSION_NOT_FOUND", body.Code)

	status, _ = env.do(t, http.MethodDelete, "/api/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestLoginRequiresUser(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	status, body := env.do(t, http.MethodPost, "/api/sessions", loginRequest{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "userId is required", body.Message)
}

// ==========================
// SMS
// ==========================

func TestSMSConfigAndTemplates(t *testing.T) {
	env := newTestEnv(t, []string{"SMS User ID is not configured"}, nil)

	status, body := env.do(t, http.MethodGet, "/api/sms/config", nil)
	require.Equal(t, http.StatusOK, status)
	var cfg struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	decodeData(t, body, &cfg)
	assert.False(t, cfg.Valid)
	assert.Equal(t, []string{"SMS User ID is not configured"}, cfg.Errors)

	status, body = env.do(t, http.MethodGet, "/api/sms/templates", nil)
	require.Equal(t, http.StatusOK, status)
	var templates []sms.Template
	decodeData(t, body, &templates)
	require.NotEmpty(t, templates)
	assert.Equal(t, "parcel_created", templates[0].ID)
	assert.Equal(t, sms.CustomTemplateID, templates[len(templates)-1].ID)
}

func TestValidatePhone(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, body := env.do(t, http.MethodPost, "/api/sms/phone/validate", map[string]string{"phone": "0712 345 678"})
	require.Equal(t, http.StatusOK, status)
	var res map[string]interface{}
	decodeData(t, body, &res)
	assert.Equal(t, "254712345678", res["normalized"])
	assert.Equal(t, true, res["valid"])
}

func TestListParcels(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, body := env.do(t, http.MethodGet, "/api/sms/parcels?branch=Nairobi&status=2&phone=valid&limit=50&search=+WB1+", nil)
	require.Equal(t, http.StatusOK, status)

	var list []parcelView
	decodeData(t, body, &list)
	require.Len(t, list, 2)
	assert.Equal(t, sms.PhoneBothValid, list[0].PhoneStatus)
	assert.Equal(t, sms.PhoneSenderOnly, list[1].PhoneStatus)
	assert.Equal(t, "In Transit", list[0].StatusLabel)

	f := env.parcels.lastFilter
	assert.Equal(t, "Nairobi", f.Branch)
	assert.Equal(t, "WB1", f.Search)
	assert.Equal(t, parcels.PhoneValid, f.Phone)
	assert.Equal(t, 50, f.Limit)
	require.NotNil(t, f.Status)
	assert.Equal(t, models.ParcelInTransit, *f.Status)

	for _, q := range []string{"status=9", "phone=maybe", "limit=-1"} {
		status, _ := env.do(t, http.MethodGet, "/api/sms/parcels?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, status, q)
	}

	env.parcels.listErr = errors.NewQueryTimeoutError("parcels_list")
	status, _ = env.do(t, http.MethodGet, "/api/sms/parcels", nil)
	assert.Equal(t, http.StatusGatewayTimeout, status)
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, body := env.do(t, http.MethodPost, "/api/sms/parcels/preview", parcelBatchRequest{
		ParcelIDs:  []int64{1, 2},
		TemplateID: "ready_for_pickup",
		Recipients: "receiver",
	})
	require.Equal(t, http.StatusOK, status)

	var res struct {
		Messages []previewMessage `json:"messages"`
		CanSend  bool             `json:"canSend"`
		Errors   []string         `json:"errors"`
	}
	decodeData(t, body, &res)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, "WB100", res.Messages[0].Waybill)
	assert.Equal(t, "254722000111", res.Messages[0].Phone)
	assert.False(t, res.CanSend)
	assert.Equal(t, []string{"Invalid receiver phone number for parcel WB200"}, res.Errors)
	assert.Empty(t, env.gateway.sent)
}

func TestSendParcels(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, body := env.do(t, http.MethodPost, "/api/sms/parcels/send", parcelBatchRequest{
		ParcelIDs:  []int64{1},
		TemplateID: "parcel_dispatched",
	})
	require.Equal(t, http.StatusOK, status)

	var batch sms.BatchResult
	decodeData(t, body, &batch)
	assert.Len(t, batch.Results, 2)
	assert.Equal(t, 2, batch.Succeeded)
	assert.True(t, batch.TestMode)
	assert.Equal(t, []string{"0712345678", "0722000111"}, env.gateway.sent)
}

func TestSendParcels_Refused(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, body := env.do(t, http.MethodPost, "/api/sms/parcels/send", parcelBatchRequest{
		ParcelIDs:  []int64{2},
		TemplateID: "custom",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "PRE_SEND_VALIDATION_FAILED", body.Code)
	assert.Equal(t, []string{
		"Custom message cannot be empty",
		"Invalid receiver phone number for parcel WB200",
	}, body.Errors)
	assert.Empty(t, env.gateway.sent)

	status, body = env.do(t, http.MethodPost, "/api/sms/parcels/send", parcelBatchRequest{
		ParcelIDs:  []int64{1, 42},
		TemplateID: "parcel_created",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "PARCEL_NOT_FOUND", body.Code)

	status, _ = env.do(t, http.MethodPost, "/api/sms/parcels/send", parcelBatchRequest{
		ParcelIDs:  []int64{1},
		TemplateID: "parcel_created",
		Recipients: "courier",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSendEndpoints_Unconfigured(t *testing.T) {
	env := newTestEnv(t, []string{"SMS Password is not configured"}, nil)

	for _, path := range []string{"/api/sms/parcels/send", "/api/sms/bulk", "/api/sms/parcels/1/status-update"} {
		status, body := env.do(t, http.MethodPost, path, map[string]interface{}{})
		assert.Equal(t, http.StatusServiceUnavailable, status, path)
		assert.Equal(t, []string{"SMS Password is not configured"}, body.Errors)
	}
	assert.Empty(t, env.gateway.sent)
}

func TestSendBulk(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, body := env.do(t, http.MethodPost, "/api/sms/bulk", bulkRequest{
		PhoneNumbers: []string{"0712345678", "722000111"},
		Message:      "Branch closed on Monday",
	})
	require.Equal(t, http.StatusOK, status)
	var batch sms.BatchResult
	decodeData(t, body, &batch)
	assert.Equal(t, 2, batch.Succeeded)

	status, body = env.do(t, http.MethodPost, "/api/sms/bulk", bulkRequest{PhoneNumbers: []string{"12"}, Message: ""})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, []string{"Message cannot be empty", "Invalid phone number: 12"}, body.Errors)
}

func TestStatusUpdate(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, body := env.do(t, http.MethodPost, "/api/sms/parcels/1/status-update", statusUpdateRequest{NewStatus: "delivered"})
	require.Equal(t, http.StatusOK, status)
	var batch sms.BatchResult
	decodeData(t, body, &batch)
	require.Len(t, batch.Results, 2)
	assert.Equal(t, sms.RoleSender, batch.Results[0].Role)

	status, _ = env.do(t, http.MethodPost, "/api/sms/parcels/99/status-update", statusUpdateRequest{NewStatus: "delivered"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodPost, "/api/sms/parcels/abc/status-update", statusUpdateRequest{NewStatus: "delivered"})
	assert.Equal(t, http.StatusBadRequest, status)
}
