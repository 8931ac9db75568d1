// internal/session/machine.go
package session

import "time"

// State is the inactivity state of a session.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateWarning
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateWarning:
		return "warning"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Trigger names one of the two deferred calls an armed machine owns.
type Trigger int

const (
	TriggerWarning Trigger = iota
	TriggerExpiry
)

func (t Trigger) String() string {
	if t == TriggerWarning {
		return "warning"
	}
	return "expiry"
}

// Event is an input to Machine.Apply.
type Event interface {
	event()
}

// Authenticated arms the machine from At.
type Authenticated struct{ At time.Time }

type Deauthenticated struct{}

// Activity re-arms an armed machine.
type Activity struct{ At time.Time }

// Extend re-arms from At, also from Warning.
type Extend struct{ At time.Time }

// WarningDue and ExpiryDue carry the deadline they were scheduled for so a
// trigger from an earlier arm cycle can be told apart.
type WarningDue struct{ Deadline time.Time }

type ExpiryDue struct{ Deadline time.Time }

func (Authenticated) event()   {}
func (Deauthenticated) event() {}
func (Activity) event()        {}
func (Extend) event()          {}
func (WarningDue) event()      {}
func (ExpiryDue) event()       {}

// Effect is a side effect the driver of a Machine must carry out, in order.
type Effect interface {
	effect()
}

type Cancel struct{ Trigger Trigger }

// Schedule asks the driver to fire Trigger at At.
type Schedule struct {
	Trigger Trigger
	At      time.Time
}

// Warn tells the driver to show the warning.
type Warn struct{ Remaining time.Duration }

type Timeout struct{}

func (Cancel) effect()   {}
func (Schedule) effect() {}
func (Warn) effect()     {}
func (Timeout) effect()  {}

// Machine is the inactivity state machine. It is a value: Apply returns the
// next machine and leaves the receiver untouched.
type Machine struct {
	cfg          TimeoutConfig
	state        State
	lastActivity time.Time
	warningAt    time.Time
	expiresAt    time.Time
}

// NewMachine returns an Idle machine.
func NewMachine(cfg TimeoutConfig) Machine {
	return Machine{cfg: cfg, state: StateIdle}
}

func (m Machine) State() State            { return m.state }
func (m Machine) LastActivity() time.Time { return m.lastActivity }
func (m Machine) WarningAt() time.Time    { return m.warningAt }
func (m Machine) ExpiresAt() time.Time    { return m.expiresAt }
func (m Machine) Config() TimeoutConfig   { return m.cfg }
func (m Machine) armed() bool             { return m.state == StateArmed || m.state == StateWarning }

// Apply returns the next machine and the effects the driver must carry out.
// Trigger events whose deadline no longer matches produce no effects.
func (m Machine) Apply(ev Event) (Machine, []Effect) {
	switch e := ev.(type) {
	case Authenticated:
		switch m.state {
		case StateIdle, StateExpired, StateArmed:
			return m.arm(e.At)
		}

	case Deauthenticated:
		if m.state == StateIdle {
			return m, nil
		}
		effects := []Effect{}
		if m.armed() {
			effects = cancelBoth()
		}
		return m.clear(StateIdle), effects

	case Activity:
		// Warning is left only through Extend; activity behind the warning
		// dialog does not count.
		if m.state == StateArmed {
			return m.arm(e.At)
		}

	case Extend:
		if m.armed() {
			return m.arm(e.At)
		}

	case WarningDue:
		if m.state == StateArmed && e.Deadline.Equal(m.warningAt) {
			next := m
			next.state = StateWarning
			return next, []Effect{Warn{Remaining: m.expiresAt.Sub(m.warningAt)}}
		}

	case ExpiryDue:
		if m.armed() && e.Deadline.Equal(m.expiresAt) {
			return m.clear(StateExpired), append(cancelBoth(), Timeout{})
		}
	}

	return m, nil
}

// arm cancels both triggers and reschedules them from at. The activity clock
// never moves backward.
func (m Machine) arm(at time.Time) (Machine, []Effect) {
	if at.Before(m.lastActivity) {
		at = m.lastActivity
	}

	next := m
	next.state = StateArmed
	next.lastActivity = at
	next.warningAt = at.Add(m.cfg.WarningAfter())
	next.expiresAt = at.Add(m.cfg.Total)

	return next, append(cancelBoth(),
		Schedule{Trigger: TriggerWarning, At: next.warningAt},
		Schedule{Trigger: TriggerExpiry, At: next.expiresAt},
	)
}

func (m Machine) clear(state State) Machine {
	next := m
	next.state = state
	next.warningAt = time.Time{}
	next.expiresAt = time.Time{}
	return next
}

func cancelBoth() []Effect {
	return []Effect{Cancel{Trigger: TriggerWarning}, Cancel{Trigger: TriggerExpiry}}
}
