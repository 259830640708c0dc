package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/store"
)

const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 100
)

type NotificationService struct {
	store *store.Store
	log   *slog.Logger
}

// List returns the newest notifications for user and the unread count over
// all of them, not just the returned page.
func (s *NotificationService) List(ctx context.Context, user *models.User, limit int) ([]models.Notification, int64, error) {
	if limit == 0 {
		limit = DefaultNotificationLimit
	}
	if limit < 1 || limit > MaxNotificationLimit {
		return nil, 0, fmt.Errorf("%w: limit must be between 1 and %d", ErrBadRequest, MaxNotificationLimit)
	}

	items, err := s.store.Notifications().Find(ctx, store.Query{
		Where: "user_id = ?",
		Args:  []any{user.ID},
		Order: "created_at DESC, id DESC",
		Limit: limit,
	})
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.store.Notifications().Count(ctx, "user_id = ? AND is_read = ?", user.ID, false)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

// MarkRead only sees the caller's own notifications; anyone else's id is
// reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, id string, user *models.User) (*models.Notification, error) {
	n, err := s.store.Notifications().First(ctx, "id = ? AND user_id = ?", id, user.ID)
	if err != nil {
		return nil, storeErr(err, "notification")
	}
	if !n.IsRead {
		if err := s.store.Notifications().SetColumns(ctx, n.ID, map[string]any{"is_read": true}); err != nil {
			return nil, storeErr(err, "notification")
		}
		n.IsRead = true
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, user *models.User) (int64, error) {
	return s.store.Notifications().SetColumnsWhere(ctx, map[string]any{"is_read": true},
		"user_id = ? AND is_read = ?", user.ID, false)
}

func (s *NotificationService) notify(ctx context.Context, st *store.Store, userID, kind, message string, relatedID *string) error {
	n := &models.Notification{
		UserID:    userID,
		Type:      kind,
		Message:   message,
		RelatedID: relatedID,
	}
	if err := st.Notifications().Create(ctx, n); err != nil {
		return storeErr(err, "notification")
	}
	s.log.DebugContext(ctx, "notification created", "user_id", userID, "type", kind)
	return nil
}

// broadcast sends the same message to every user and reports how many
// notifications were written.
func (s *NotificationService) broadcast(ctx context.Context, kind, message string) (int, error) {
	users, err := s.store.Users().Find(ctx, store.Query{Order: "created_at ASC"})
	if err != nil {
		return 0, err
	}
	batch := make([]models.Notification, 0, len(users))
	for _, u := range users {
		batch = append(batch, models.Notification{UserID: u.ID, Type: kind, Message: message})
	}
	if err := s.store.Notifications().CreateMany(ctx, batch); err != nil {
		return 0, storeErr(err, "notification")
	}
	return len(batch), nil
}
