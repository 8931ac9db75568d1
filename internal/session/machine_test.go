// internal/session/machine_test.go
package session

import (
	"testing"
	"time"

	"wms-dispatch/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func testConfig() TimeoutConfig {
	return TimeoutConfig{Total: 10 * time.Second, WarningLead: 3 * time.Second}
}

func TestTimeoutConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultTimeoutConfig().Validate())
	assert.NoError(t, testConfig().Validate())

	for _, cfg := range []TimeoutConfig{
		{Total: 0, WarningLead: time.Second},
		{Total: time.Minute, WarningLead: 0},
		{Total: time.Minute, WarningLead: time.Minute},
		{Total: time.Minute, WarningLead: 2 * time.Minute},
	} {
		err := cfg.Validate()
		require.Error(t, err, "%+v", cfg)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTimeoutConfig))
	}
}

func TestMachine_ArmSchedulesBothTriggers(t *testing.T) {
	m, effects := NewMachine(testConfig()).Apply(Authenticated{At: t0})

	assert.Equal(t, StateArmed, m.State())
	assert.Equal(t, []Effect{
		Cancel{Trigger: TriggerWarning},
		Cancel{Trigger: TriggerExpiry},
		Schedule{Trigger: TriggerWarning, At: t0.Add(7 * time.Second)},
		Schedule{Trigger: TriggerExpiry, At: t0.Add(10 * time.Second)},
	}, effects)
}

func TestMachine_ActivityMovesExpiryForward(t *testing.T) {
	m, _ := NewMachine(testConfig()).Apply(Authenticated{At: t0})

	prev := m.ExpiresAt()
	for i := 1; i <= 5; i++ {
		m, _ = m.Apply(Activity{At: t0.Add(time.Duration(i) * time.Second)})
		assert.True(t, m.ExpiresAt().After(prev), "activity %d", i)
		prev = m.ExpiresAt()
	}

	// An out-of-order timestamp never pulls the deadline back.
	m, _ = m.Apply(Activity{At: t0})
	assert.Equal(t, prev, m.ExpiresAt())
}

func TestMachine_WarningThenExpiry(t *testing.T) {
	m, _ := NewMachine(testConfig()).Apply(Authenticated{At: t0})
	warningAt, expiresAt := m.WarningAt(), m.ExpiresAt()

	m, effects := m.Apply(WarningDue{Deadline: warningAt})
	assert.Equal(t, StateWarning, m.State())
	assert.Equal(t, []Effect{Warn{Remaining: 3 * time.Second}}, effects)

	// Activity does not leave the warning window.
	m, effects = m.Apply(Activity{At: warningAt.Add(time.Second)})
	assert.Equal(t, StateWarning, m.State())
	assert.Empty(t, effects)

	m, effects = m.Apply(ExpiryDue{Deadline: expiresAt})
	assert.Equal(t, StateExpired, m.State())
	assert.Equal(t, Timeout{}, effects[len(effects)-1])
	assert.True(t, m.ExpiresAt().IsZero())

	_, effects = m.Apply(ExpiryDue{Deadline: expiresAt})
	assert.Empty(t, effects)
}

func TestMachine_ExtendLeavesWarning(t *testing.T) {
	m, _ := NewMachine(testConfig()).Apply(Authenticated{At: t0})
	oldExpiry := m.ExpiresAt()
	m, _ = m.Apply(WarningDue{Deadline: m.WarningAt()})

	m, effects := m.Apply(Extend{At: t0.Add(8 * time.Second)})
	assert.Equal(t, StateArmed, m.State())
	assert.Equal(t, t0.Add(18*time.Second), m.ExpiresAt())
	assert.Equal(t, Cancel{Trigger: TriggerWarning}, effects[0])
	assert.Equal(t, Cancel{Trigger: TriggerExpiry}, effects[1])

	_, effects = m.Apply(ExpiryDue{Deadline: oldExpiry})
	assert.Empty(t, effects, "trigger from the previous cycle is stale")
}

func TestMachine_DeauthenticateDisarms(t *testing.T) {
	m, _ := NewMachine(testConfig()).Apply(Authenticated{At: t0})
	warningAt := m.WarningAt()

	m, effects := m.Apply(Deauthenticated{})
	assert.Equal(t, StateIdle, m.State())
	assert.Equal(t, []Effect{Cancel{Trigger: TriggerWarning}, Cancel{Trigger: TriggerExpiry}}, effects)

	for _, ev := range []Event{WarningDue{Deadline: warningAt}, Activity{At: t0}, Extend{At: t0}} {
		next, effects := m.Apply(ev)
		assert.Equal(t, StateIdle, next.State())
		assert.Empty(t, effects)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "armed", StateArmed.String())
	assert.Equal(t, "warning", StateWarning.String())
	assert.Equal(t, "expired", StateExpired.String())
}
