// internal/session/manager.go
package session

import (
	"context"
	"sync"
	"time"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/common/metrics"
	"wms-dispatch/internal/models"

	"github.com/google/uuid"
)

const (
	LogoutReasonUser      = "user_initiated"
	LogoutReasonTimeout   = "inactivity_timeout"
	LogoutReasonCountdown = "warning_countdown"
	LogoutReasonAdmin     = "admin_logout_all"
)

// LogoutHook is called once per session after it has been logged out.
type LogoutHook func(s models.Session, reason string)

type tracked struct {
	session   models.Session
	monitor   *Monitor
	countdown *Countdown
}

// Manager owns one Monitor per live session. Expiry is enforced twice: by
// the monitor's own timer and by the warning countdown. Whichever fires
// first logs the session out; the other finds nothing to do.
type Manager struct {
	mu       sync.Mutex
	cfg      TimeoutConfig
	clock    Clock
	store    Store
	sessions map[string]*tracked
	onLogout LogoutHook
	logger   logger.Logger
	newID    func() string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerClock replaces the real clock, mostly for tests.
func WithManagerClock(c Clock) ManagerOption {
	return func(m *Manager) { m.clock = c }
}

// WithLogoutHook registers a callback for ended sessions.
func WithLogoutHook(h LogoutHook) ManagerOption {
	return func(m *Manager) { m.onLogout = h }
}

// NewManager validates cfg and returns an empty registry.
func NewManager(cfg TimeoutConfig, store Store, log logger.Logger, opts ...ManagerOption) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:      cfg,
		clock:    RealClock(),
		store:    store,
		sessions: make(map[string]*tracked),
		logger:   log.Named("session-manager"),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Config returns the timeouts every session runs with.
func (m *Manager) Config() TimeoutConfig {
	return m.cfg
}

// Login starts tracking a new authenticated session.
func (m *Manager) Login(ctx context.Context, userID string, metadata map[string]string) (*models.Session, error) {
	id := m.newID()

	monitor, err := NewMonitor(m.cfg,
		WithClock(m.clock),
		WithLogger(m.logger.WithFields(map[string]interface{}{"sessionId": id})),
		WithWarningHandler(func(remaining time.Duration) { m.handleWarning(id, remaining) }),
		WithTimeoutHandler(func() { m.expire(id, LogoutReasonTimeout) }),
	)
	if err != nil {
		return nil, err
	}

	t := &tracked{
		session: models.Session{
			ID:        id,
			UserID:    userID,
			CreatedAt: m.clock.Now().UTC(),
			Metadata:  metadata,
		},
		monitor: monitor,
	}

	m.mu.Lock()
	m.sessions[id] = t
	m.mu.Unlock()

	monitor.SetAuthenticated(true)

	sess := m.refresh(t)
	if err := m.store.Save(ctx, &sess); err != nil {
		m.drop(id)
		monitor.SetAuthenticated(false)
		return nil, err
	}

	metrics.SessionsActive.Inc()
	metrics.SessionEvents.WithLabelValues("login").Inc()
	m.logger.Info("session started", map[string]interface{}{
		"sessionId": id,
		"userId":    userID,
		"expiresAt": sess.ExpiresAt,
	})

	return &sess, nil
}

// Activity records a user interaction on a live session.
func (m *Manager) Activity(ctx context.Context, id string, kind ActivityKind) (*models.Session, error) {
	t, ok := m.lookup(id)
	if !ok {
		return nil, errors.NewSessionNotFoundError(id)
	}
	if !kind.Recognized() {
		return nil, errors.NewInputValidationFailedError("unrecognized activity kind: " + string(kind))
	}

	t.monitor.RecordActivity(kind)
	metrics.SessionEvents.WithLabelValues("activity").Inc()

	sess := m.refresh(t)
	if err := m.store.Save(ctx, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Extend is the "stay signed in" action. It stops any running countdown and
// re-arms the monitor from now.
func (m *Manager) Extend(ctx context.Context, id string) (*models.Session, error) {
	t, ok := m.lookup(id)
	if !ok {
		return nil, errors.NewSessionNotFoundError(id)
	}

	m.mu.Lock()
	countdown := t.countdown
	t.countdown = nil
	m.mu.Unlock()
	if countdown != nil {
		countdown.Stop()
	}

	t.monitor.Extend()
	metrics.SessionEvents.WithLabelValues("extend").Inc()

	sess := m.refresh(t)
	if err := m.store.Save(ctx, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Logout ends a session. Logging out an unknown or already ended session is
// a no-op.
func (m *Manager) Logout(ctx context.Context, id, reason string) error {
	t, ok := m.drop(id)
	if !ok {
		return m.store.Delete(ctx, id)
	}

	t.monitor.SetAuthenticated(false)

	m.mu.Lock()
	countdown := t.countdown
	t.countdown = nil
	m.mu.Unlock()
	if countdown != nil {
		countdown.Stop()
	}

	metrics.SessionsActive.Dec()
	metrics.SessionEvents.WithLabelValues("logout").Inc()
	m.logger.Info("session ended", map[string]interface{}{
		"sessionId": id,
		"userId":    t.session.UserID,
		"reason":    reason,
	})

	err := m.store.Delete(ctx, id)

	if m.onLogout != nil {
		m.onLogout(t.session, reason)
	}
	return err
}

// LogoutUser ends every session of userID and returns how many were ended.
func (m *Manager) LogoutUser(ctx context.Context, userID string) (int, error) {
	ids, err := m.store.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(ids))
	m.mu.Lock()
	for id, t := range m.sessions {
		if t.session.UserID == userID {
			ids = append(ids, id)
		}
	}
	m.mu.Unlock()

	count := 0
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := m.Logout(ctx, id, LogoutReasonAdmin); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Status returns the live view of a session, falling back to the store for
// sessions owned by another instance.
func (m *Manager) Status(ctx context.Context, id string) (*models.Session, error) {
	if t, ok := m.lookup(id); ok {
		sess := m.refresh(t)
		return &sess, nil
	}
	return m.store.Get(ctx, id)
}

func (m *Manager) handleWarning(id string, remaining time.Duration) {
	t, ok := m.lookup(id)
	if !ok {
		return
	}

	// The callback runs after the monitor released its lock, so an Extend may
	// already have moved the session back to Armed.
	snap := t.monitor.Snapshot()
	if snap.State != StateWarning {
		return
	}
	deadline := snap.ExpiresAt

	countdown := StartCountdown(m.clock, remaining, nil, func() { m.expireWarned(id, deadline) })

	m.mu.Lock()
	if t.monitor.State() != StateWarning {
		m.mu.Unlock()
		countdown.Stop()
		return
	}
	if t.countdown != nil {
		t.countdown.Stop()
	}
	t.countdown = countdown
	m.mu.Unlock()

	metrics.SessionEvents.WithLabelValues("warning").Inc()
	m.logger.Info("session inactivity warning", map[string]interface{}{
		"sessionId": id,
		"remaining": remaining.String(),
	})

	sess := m.refresh(t)
	if err := m.store.Save(context.Background(), &sess); err != nil {
		m.logger.Warn("failed to persist warning state", map[string]interface{}{
			"sessionId": id,
			"error":     err,
		})
	}
}

// expireWarned logs the session out only while it is still in the warning
// window the countdown was started for.
func (m *Manager) expireWarned(id string, deadline time.Time) {
	t, ok := m.lookup(id)
	if !ok {
		return
	}
	snap := t.monitor.Snapshot()
	if snap.State != StateWarning || !snap.ExpiresAt.Equal(deadline) {
		m.logger.Debug("ignoring stale warning countdown", map[string]interface{}{
			"sessionId": id,
		})
		return
	}
	m.expire(id, LogoutReasonCountdown)
}

func (m *Manager) expire(id, reason string) {
	if _, ok := m.lookup(id); !ok {
		return
	}
	metrics.SessionEvents.WithLabelValues("timeout").Inc()
	if err := m.Logout(context.Background(), id, reason); err != nil {
		m.logger.Warn("failed to remove expired session", map[string]interface{}{
			"sessionId": id,
			"error":     err,
		})
	}
}

func (m *Manager) lookup(id string) (*tracked, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.sessions[id]
	return t, ok
}

func (m *Manager) drop(id string) (*tracked, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	return t, ok
}

// refresh copies the monitor's view into the tracked session.
func (m *Manager) refresh(t *tracked) models.Session {
	snap := t.monitor.Snapshot()

	m.mu.Lock()
	defer m.mu.Unlock()
	t.session.State = snap.State.String()
	t.session.LastActivity = snap.LastActivity.UTC()
	t.session.WarningAt = snap.WarningAt.UTC()
	t.session.ExpiresAt = snap.ExpiresAt.UTC()
	return t.session
}
