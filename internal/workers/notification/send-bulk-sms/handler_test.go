// internal/workers/notification/send-bulk-sms/handler_test.go
package sendbulksms

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"wms-dispatch/internal/common/config"
	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/sms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockBulkSender struct {
	mock.Mock
}

func (m *MockBulkSender) SendBulk(ctx context.Context, req sms.BulkRequest) (*sms.BatchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sms.BatchResult), args.Error(1)
}

func createTestConfig() *Config {
	return &Config{Enabled: true, MaxJobsActive: 1, Timeout: time.Minute, MaxRecipients: 3}
}

func variables(t *testing.T, v map[string]interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// ==========================
// Handler Tests
// ==========================

func TestNewHandler(t *testing.T) {
	h, err := NewHandler(HandlerOptions{Logger: logger.NewTestLogger(t), Workflow: &MockBulkSender{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), h.config)
	assert.True(t, h.IsEnabled())
	assert.NoError(t, h.HealthCheck(context.Background()))

	_, err = NewHandler(HandlerOptions{
		CustomConfig: &Config{MaxJobsActive: 1, Timeout: time.Second},
		Logger:       logger.NewTestLogger(t),
		Workflow:     &MockBulkSender{},
	})
	assert.EqualError(t, err, "invalid configuration for send-bulk-sms: max_recipients must be positive")

	_, err = NewHandler(HandlerOptions{CustomConfig: createTestConfig(), Logger: logger.NewTestLogger(t)})
	assert.EqualError(t, err, "sms workflow is required")
}

func TestParseInput(t *testing.T) {
	input, err := parseInput(variables(t, map[string]interface{}{
		"phoneNumbers": []string{"0712345678", "+254722000111"},
		"message":      "Branch closed for stock-take",
		"testMode":     false,
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"0712345678", "+254722000111"}, input.PhoneNumbers)
	require.NotNil(t, input.TestMode)
	assert.False(t, *input.TestMode)

	for name, vars := range map[string]map[string]interface{}{
		"no numbers":    {"phoneNumbers": []string{}, "message": "hi"},
		"empty message": {"phoneNumbers": []string{"0712345678"}, "message": ""},
		"wrong type":    {"phoneNumbers": "0712345678", "message": "hi"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseInput(variables(t, vars))
			assert.True(t, errors.HasCode(err, errors.ErrCodeInputValidationFailed))
		})
	}

	_, err = parseInput("{not json")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInputValidationFailed))
}

// ==========================
// Service Tests
// ==========================

func TestService_Execute(t *testing.T) {
	sender := &MockBulkSender{}
	svc := NewService(ServiceDependencies{Logger: logger.NewTestLogger(t), Workflow: sender}, createTestConfig())

	sender.On("SendBulk", mock.Anything, sms.BulkRequest{
		PhoneNumbers: []string{"0712345678", "0722000111"},
		Message:      "Branch closed for stock-take",
		Options:      sms.SendOptions{Test: true},
	}).Return(&sms.BatchResult{
		BatchID:   "bulk-1",
		TestMode:  true,
		Results:   []sms.SendResult{{Status: sms.StatusSuccess}, {Status: sms.StatusError}},
		Succeeded: 1,
		Failed:    1,
	}, nil)

	testMode := true
	out, err := svc.Execute(context.Background(), &Input{
		PhoneNumbers: []string{"0712345678", "0722000111"},
		Message:      "Branch closed for stock-take",
		TestMode:     &testMode,
	})
	require.NoError(t, err)
	assert.Equal(t, "bulk-1", out.BatchID)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, 1, out.Failed)
	sender.AssertExpectations(t)
}

func TestService_Execute_Refused(t *testing.T) {
	sender := &MockBulkSender{}
	svc := NewService(ServiceDependencies{Logger: logger.NewTestLogger(t), Workflow: sender}, createTestConfig())

	sender.On("SendBulk", mock.Anything, mock.Anything).
		Return(nil, &sms.ValidationError{Reasons: []string{"Invalid phone number: 12345"}})

	_, err := svc.Execute(context.Background(), &Input{PhoneNumbers: []string{"12345"}, Message: "hi"})
	assert.True(t, errors.HasCode(err, errors.ErrCodePreSendValidationFailed))
}

func TestService_Execute_TooManyRecipients(t *testing.T) {
	sender := &MockBulkSender{}
	svc := NewService(ServiceDependencies{Logger: logger.NewTestLogger(t), Workflow: sender}, createTestConfig())

	_, err := svc.Execute(context.Background(), &Input{
		PhoneNumbers: []string{"0711000001", "0711000002", "0711000003", "0711000004"},
		Message:      "hi",
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInputValidationFailed))
	sender.AssertNotCalled(t, "SendBulk", mock.Anything, mock.Anything)
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: false, MaxJobsActive: 4, Timeout: 120000},
		},
		SMS: config.SMSConfig{DefaultTestMode: true},
	}

	cfg := createConfigFromAppConfig(appCfg, nil)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 4, cfg.MaxJobsActive)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.True(t, cfg.DefaultTestMode)
	assert.Equal(t, 500, cfg.MaxRecipients)

	assert.Equal(t, DefaultConfig(), createConfigFromAppConfig(nil, nil))

	custom := createTestConfig()
	assert.Same(t, custom, createConfigFromAppConfig(appCfg, custom))
}
