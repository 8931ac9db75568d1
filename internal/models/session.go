// internal/models/session.go
package models

import "time"

// Session is the persisted view of an authenticated session tracked by the
// inactivity monitor.
type Session struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	State        string            `json:"state"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastActivity time.Time         `json:"lastActivity"`
	WarningAt    time.Time         `json:"warningAt"`
	ExpiresAt    time.Time         `json:"expiresAt"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// IsExpired reports whether now is at or past the expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Remaining is the time left before expiry, never negative.
func (s *Session) Remaining(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
