// internal/workers/session/session-logout/service.go

// Package sessionlogout ends inactivity-tracked sessions from a process.
package sessionlogout

import (
	"context"
	"fmt"
	"time"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/session"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	sessions SessionManager
	now      func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		sessions: deps.Sessions,
		now:      time.Now,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	s.logger.Info("Executing session logout", map[string]interface{}{
		"userId":    input.UserID,
		"sessionId": input.SessionID,
		"logoutAll": input.LogoutAll,
		"reason":    input.Reason,
	})

	if input.LogoutAll {
		count, err := s.sessions.LogoutUser(ctx, input.UserID)
		if err != nil {
			return nil, err
		}
		return s.output(fmt.Sprintf("Logged out of %d session(s)", count), count), nil
	}

	if input.SessionID == "" {
		return nil, errors.NewInputValidationFailedError("sessionId is required unless logoutAll is set")
	}

	sess, err := s.sessions.Status(ctx, input.SessionID)
	if errors.HasCode(err, errors.ErrCodeSessionNotFound) {
		return s.output("Session already ended", 0), nil
	}
	if err != nil {
		return nil, err
	}
	if sess.UserID != input.UserID {
		return nil, errors.NewInputValidationFailedError(
			fmt.Sprintf("session %s does not belong to user %s", input.SessionID, input.UserID))
	}

	reason := input.Reason
	if reason == "" {
		reason = session.LogoutReasonUser
	}
	if err := s.sessions.Logout(ctx, input.SessionID, reason); err != nil {
		return nil, err
	}
	return s.output("Logout successful", 1), nil
}

func (s *Service) output(message string, count int) *Output {
	return &Output{
		Success:             true,
		Message:             message,
		SessionsInvalidated: count,
		LogoutAt:            s.now().UTC().Format(time.RFC3339),
	}
}

func (s *Service) TestConnection(_ context.Context) error {
	if s.sessions == nil {
		return fmt.Errorf("session manager not configured")
	}
	return nil
}
