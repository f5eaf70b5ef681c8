// Package notification persists in-app notifications and, when the user
// opted in, mirrors them to email.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/notify"
)

// Service delivers notifications through the database and email.
type Service struct {
	repo   *repository.NotificationRepository
	users  *repository.UserRepository
	email  notify.EmailSender
	logger *zap.Logger
}

// NewService creates the notification service
func NewService(
	repo *repository.NotificationRepository,
	users *repository.UserRepository,
	email notify.EmailSender,
	logger *zap.Logger,
) *Service {
	return &Service{repo: repo, users: users, email: email, logger: logger}
}

// Notify records an in-app notification and sends an email when the
// user's preferences allow it. Delivery is best effort; callers never
// fail because a notification did not go out.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, typ entities.NotificationType, title, body string) {
	n := entities.NewNotification(userID, typ, title, body)
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Warn("failed to store notification",
			zap.String("user_id", userID.String()),
			zap.String("type", string(typ)),
			zap.Error(err),
		)
		return
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		return
	}
	if !s.emailEnabled(user, typ) {
		return
	}

	htmlBody := fmt.Sprintf("<p>%s</p>", body)
	if err := s.email.Send(ctx, []string{user.Email}, title, htmlBody); err != nil {
		s.logger.Warn("failed to send notification email",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

// emailEnabled checks the user's JSONB preferences: the global email
// switch plus the per-type switch, both defaulting to on.
func (s *Service) emailEnabled(user *entities.User, typ entities.NotificationType) bool {
	var prefs map[string]bool
	if err := json.Unmarshal(user.NotificationPreferences, &prefs); err != nil {
		return true
	}
	if enabled, ok := prefs["email"]; ok && !enabled {
		return false
	}
	if enabled, ok := prefs[string(typ)]; ok && !enabled {
		return false
	}
	return true
}

// List returns a page of the user's notifications with the unread count.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entities.Notification, int64, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.ErrDBQueryFailed("list notifications", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, apperrors.ErrDBQueryFailed("count unread", err)
	}
	return notifications, unread, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		return apperrors.ErrDBQueryFailed("mark read", err)
	}
	return nil
}

// MarkAllRead marks all of the user's notifications as read.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return apperrors.ErrDBQueryFailed("mark all read", err)
	}
	return nil
}
