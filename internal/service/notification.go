package service

import (
	"context"

	"github.com/utafrali/storefront/internal/notify"
	"github.com/utafrali/storefront/internal/session"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// NotificationService exposes a session's toast stack.
type NotificationService struct {
	sessions *session.Registry
}

// NewNotificationService creates a new notification service.
func NewNotificationService(sessions *session.Registry) *NotificationService {
	return &NotificationService{sessions: sessions}
}

// Active returns the unexpired toasts, oldest first.
func (s *NotificationService) Active(ctx context.Context, sessionID string) ([]notify.Toast, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	var toasts []notify.Toast
	err := s.sessions.With(ctx, sessionID, func(sess *session.Session) error {
		toasts = sess.Toasts.Active()
		return nil
	})
	if toasts == nil {
		toasts = []notify.Toast{}
	}
	return toasts, err
}

// Dismiss removes the toast id before it expires.
func (s *NotificationService) Dismiss(ctx context.Context, sessionID, id string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}
	return s.sessions.With(ctx, sessionID, func(sess *session.Session) error {
		if !sess.Toasts.Dismiss(id) {
			return apperrors.NotFound("notification", id)
		}
		return nil
	})
}
