// internal/session/monitor_test.go
package session

import (
	"testing"
	"time"

	"wms-dispatch/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type monitorCallbacks struct {
	warnings []time.Duration
	timeouts int
}

func newTestMonitor(t *testing.T, clock *FakeClock) (*Monitor, *monitorCallbacks) {
	cb := &monitorCallbacks{}
	m, err := NewMonitor(testConfig(),
		WithClock(clock),
		WithLogger(logger.NewTestLogger(t)),
		WithWarningHandler(func(remaining time.Duration) { cb.warnings = append(cb.warnings, remaining) }),
		WithTimeoutHandler(func() { cb.timeouts++ }),
	)
	require.NoError(t, err)
	return m, cb
}

func TestNewMonitorRejectsBadConfig(t *testing.T) {
	_, err := NewMonitor(TimeoutConfig{Total: time.Second, WarningLead: time.Second})
	assert.Error(t, err)
}

func TestMonitor_WarningAndTimeoutFireOnce(t *testing.T) {
	clock := NewFakeClock(t0)
	m, cb := newTestMonitor(t, clock)

	m.SetAuthenticated(true)
	assert.Equal(t, StateArmed, m.State())

	clock.Advance(6 * time.Second)
	assert.Empty(t, cb.warnings)

	clock.Advance(time.Second)
	assert.Equal(t, []time.Duration{3 * time.Second}, cb.warnings)
	assert.Equal(t, StateWarning, m.State())

	clock.Advance(3 * time.Second)
	assert.Equal(t, 1, cb.timeouts)
	assert.Equal(t, StateExpired, m.State())

	clock.Advance(time.Minute)
	assert.Len(t, cb.warnings, 1)
	assert.Equal(t, 1, cb.timeouts)
	assert.Zero(t, clock.Pending())
}

func TestMonitor_ActivityResets(t *testing.T) {
	clock := NewFakeClock(t0)
	m, cb := newTestMonitor(t, clock)
	m.SetAuthenticated(true)

	clock.Advance(5 * time.Second)
	assert.True(t, m.RecordActivity(ActivityKeyPress))
	assert.False(t, m.RecordActivity(ActivityKind("resize")))

	clock.Advance(5 * time.Second)
	assert.Empty(t, cb.warnings)
	assert.Zero(t, cb.timeouts)

	clock.Advance(2 * time.Second)
	assert.Len(t, cb.warnings, 1)
	assert.Equal(t, t0.Add(15*time.Second), m.Snapshot().ExpiresAt)
	assert.Equal(t, 1, clock.Pending())
}

func TestMonitor_ExpiryOnlyMovesForward(t *testing.T) {
	clock := NewFakeClock(t0)
	m, _ := newTestMonitor(t, clock)
	m.SetAuthenticated(true)

	prev := m.Snapshot().ExpiresAt
	kinds := []ActivityKind{ActivityPointerDown, ActivityPointerMove, ActivityScroll, ActivityTouchStart, ActivityClick}
	for _, kind := range kinds {
		clock.Advance(500 * time.Millisecond)
		m.RecordActivity(kind)
		next := m.Snapshot().ExpiresAt
		assert.True(t, next.After(prev), string(kind))
		prev = next
	}
}

func TestMonitor_ExtendDuringWarning(t *testing.T) {
	clock := NewFakeClock(t0)
	m, cb := newTestMonitor(t, clock)
	m.SetAuthenticated(true)

	clock.Advance(8 * time.Second)
	require.Len(t, cb.warnings, 1)

	m.Extend()
	assert.Equal(t, StateArmed, m.State())

	clock.Advance(4 * time.Second)
	assert.Zero(t, cb.timeouts)

	clock.Advance(3 * time.Second)
	assert.Len(t, cb.warnings, 2)
}

func TestMonitor_DeauthenticateSilencesCallbacks(t *testing.T) {
	clock := NewFakeClock(t0)
	m, cb := newTestMonitor(t, clock)
	m.SetAuthenticated(true)

	clock.Advance(8 * time.Second)
	m.SetAuthenticated(false)
	assert.Equal(t, StateIdle, m.State())
	assert.Zero(t, clock.Pending())

	clock.Advance(time.Minute)
	assert.Len(t, cb.warnings, 1)
	assert.Zero(t, cb.timeouts)

	m.SetAuthenticated(true)
	clock.Advance(10 * time.Second)
	assert.Len(t, cb.warnings, 2)
	assert.Equal(t, 1, cb.timeouts)
}

func TestMonitor_StaleTriggerAfterDisarm(t *testing.T) {
	clock := NewFakeClock(t0)
	m, cb := newTestMonitor(t, clock)
	m.SetAuthenticated(true)
	deadline := m.Snapshot().WarningAt

	m.SetAuthenticated(false)
	// A trigger that was already queued when the monitor was disarmed.
	m.apply(func(time.Time) Event { return WarningDue{Deadline: deadline} })

	assert.Empty(t, cb.warnings)
	assert.Equal(t, StateIdle, m.State())
}
