// internal/workers/session/session-logout/models.go
package sessionlogout

import (
	"context"

	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/models"
)

type Input struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId,omitempty"`
	LogoutAll bool   `json:"logoutAll,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type Output struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	SessionsInvalidated int    `json:"sessionsInvalidated"`
	LogoutAt            string `json:"logoutAt"`
}

// SessionManager is the part of session.Manager the worker drives.
type SessionManager interface {
	Status(ctx context.Context, id string) (*models.Session, error)
	Logout(ctx context.Context, id, reason string) error
	LogoutUser(ctx context.Context, userID string) (int, error)
}

type ServiceDependencies struct {
	Logger   logger.Logger
	Sessions SessionManager
}
