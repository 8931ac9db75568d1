// internal/session/monitor.go
package session

import (
	"sync"
	"time"

	"wms-dispatch/internal/common/logger"
)

// ActivityKind is a user interaction that counts as activity. All kinds are
// treated the same.
type ActivityKind string

const (
	ActivityPointerDown ActivityKind = "pointer-down"
	ActivityPointerMove ActivityKind = "pointer-move"
	ActivityKeyPress    ActivityKind = "key-press"
	ActivityScroll      ActivityKind = "scroll"
	ActivityTouchStart  ActivityKind = "touch-start"
	ActivityClick       ActivityKind = "click"
)

// Recognized reports whether k is one of the tracked interaction kinds.
func (k ActivityKind) Recognized() bool {
	switch k {
	case ActivityPointerDown, ActivityPointerMove, ActivityKeyPress,
		ActivityScroll, ActivityTouchStart, ActivityClick:
		return true
	}
	return false
}

// Snapshot is a point-in-time copy of a monitor's machine.
type Snapshot struct {
	State        State
	LastActivity time.Time
	WarningAt    time.Time
	ExpiresAt    time.Time
}

// Monitor runs a Machine against a Clock and invokes the warning and timeout
// callbacks. It is safe for concurrent use; callbacks run without the
// monitor's lock held.
type Monitor struct {
	mu      sync.Mutex
	clock   Clock
	machine Machine
	timers  map[Trigger]Timer

	onWarning func(remaining time.Duration)
	onTimeout func()
	logger    logger.Logger
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

func WithClock(c Clock) MonitorOption {
	return func(m *Monitor) { m.clock = c }
}

// WithWarningHandler is called when the warning window opens.
func WithWarningHandler(fn func(remaining time.Duration)) MonitorOption {
	return func(m *Monitor) { m.onWarning = fn }
}

// WithTimeoutHandler is called when the session expires.
func WithTimeoutHandler(fn func()) MonitorOption {
	return func(m *Monitor) { m.onTimeout = fn }
}

func WithLogger(l logger.Logger) MonitorOption {
	return func(m *Monitor) { m.logger = l }
}

// NewMonitor returns an Idle monitor. Call SetAuthenticated(true) to arm it.
func NewMonitor(cfg TimeoutConfig, opts ...MonitorOption) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Monitor{
		clock:   RealClock(),
		machine: NewMachine(cfg),
		timers:  make(map[Trigger]Timer, 2),
		logger:  logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// SetAuthenticated arms the monitor on true and disarms it on false. Calling
// it with true while armed resets the deadlines.
func (m *Monitor) SetAuthenticated(authenticated bool) {
	if authenticated {
		m.apply(func(now time.Time) Event { return Authenticated{At: now} })
		return
	}
	m.apply(func(time.Time) Event { return Deauthenticated{} })
}

// RecordActivity resets the deadlines while armed. Unrecognized kinds and
// activity during the warning window are ignored.
func (m *Monitor) RecordActivity(kind ActivityKind) bool {
	if !kind.Recognized() {
		return false
	}
	m.apply(func(now time.Time) Event { return Activity{At: now} })
	return true
}

// Extend re-arms from now. It is a reset while armed and the way out of the
// warning window.
func (m *Monitor) Extend() {
	m.apply(func(now time.Time) Event { return Extend{At: now} })
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.State()
}

// Snapshot copies the machine's current state and deadlines.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:        m.machine.State(),
		LastActivity: m.machine.LastActivity(),
		WarningAt:    m.machine.WarningAt(),
		ExpiresAt:    m.machine.ExpiresAt(),
	}
}

func (m *Monitor) apply(build func(now time.Time) Event) {
	m.mu.Lock()
	prev := m.machine.State()
	next, effects := m.machine.Apply(build(m.clock.Now()))
	m.machine = next
	callbacks := m.execute(effects)
	m.mu.Unlock()

	if prev != next.State() {
		m.logger.Debug("inactivity monitor transition", map[string]interface{}{
			"from": prev.String(),
			"to":   next.State().String(),
		})
	}

	for _, cb := range callbacks {
		cb()
	}
}

// execute carries out timer effects and returns the callbacks to run once
// the lock is released. Must be called with mu held.
func (m *Monitor) execute(effects []Effect) []func() {
	var callbacks []func()

	for _, eff := range effects {
		switch e := eff.(type) {
		case Cancel:
			if t, ok := m.timers[e.Trigger]; ok {
				t.Stop()
				delete(m.timers, e.Trigger)
			}
		case Schedule:
			m.timers[e.Trigger] = m.schedule(e)
		case Warn:
			if m.onWarning != nil {
				remaining := e.Remaining
				callbacks = append(callbacks, func() { m.onWarning(remaining) })
			}
		case Timeout:
			if m.onTimeout != nil {
				callbacks = append(callbacks, m.onTimeout)
			}
		}
	}

	return callbacks
}

func (m *Monitor) schedule(s Schedule) Timer {
	deadline := s.At
	delay := deadline.Sub(m.clock.Now())
	if delay < 0 {
		delay = 0
	}

	if s.Trigger == TriggerWarning {
		return m.clock.AfterFunc(delay, func() {
			m.apply(func(time.Time) Event { return WarningDue{Deadline: deadline} })
		})
	}
	return m.clock.AfterFunc(delay, func() {
		m.apply(func(time.Time) Event { return ExpiryDue{Deadline: deadline} })
	})
}
