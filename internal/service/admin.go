package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emilythestrangee/stackit/backend/internal/logging"
	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/store"
)

const (
	ContentQuestion = "question"
	ContentAnswer   = "answer"

	MaxBroadcastLength = 1000
	defaultBanReason   = "Violation of community guidelines"
)

// AdminService is the moderation surface. Every call requires the admin role.
type AdminService struct {
	store         *store.Store
	questions     *QuestionService
	answers       *AnswerService
	notifications *NotificationService
	log           *slog.Logger
}

type Reports struct {
	TotalUsers     int64     `json:"total_users"`
	TotalQuestions int64     `json:"total_questions"`
	TotalAnswers   int64     `json:"total_answers"`
	TotalVotes     int64     `json:"total_votes"`
	BannedUsers    int64     `json:"banned_users"`
	GeneratedAt    time.Time `json:"generated_at"`
}

func requireAdmin(caller *models.User) error {
	if !caller.IsAdmin() {
		return fmt.Errorf("%w: admin access required", ErrForbidden)
	}
	return nil
}

// BanUser flags the target as banned. Outstanding tokens stay valid.
func (s *AdminService) BanUser(ctx context.Context, caller *models.User, targetID, reason string) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if targetID == caller.ID {
		return nil, fmt.Errorf("%w: admins cannot ban themselves", ErrBadRequest)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultBanReason
	}

	target, err := s.store.Users().Get(ctx, targetID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	now := time.Now().UTC()
	err = s.store.Users().SetColumns(ctx, target.ID, map[string]any{
		"is_banned":  true,
		"ban_reason": reason,
		"banned_at":  now,
	})
	if err != nil {
		return nil, storeErr(err, "user")
	}
	target.IsBanned, target.BanReason, target.BannedAt = true, reason, &now

	s.log.WarnContext(ctx, "user banned", "user_id", target.ID, "by", caller.ID, "reason", reason,
		"request_id", logging.RequestID(ctx))
	return target, nil
}

// Broadcast delivers a platform-wide message as an admin_message notification
// to every user.
func (s *AdminService) Broadcast(ctx context.Context, caller *models.User, message string) (int, error) {
	if err := requireAdmin(caller); err != nil {
		return 0, err
	}
	message = strings.TrimSpace(message)
	if n := len([]rune(message)); n == 0 || n > MaxBroadcastLength {
		return 0, fmt.Errorf("%w: message must be between 1 and %d characters", ErrBadRequest, MaxBroadcastLength)
	}

	sent, err := s.notifications.broadcast(ctx, models.NotificationAdminMessage, message)
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "admin broadcast sent", "by", caller.ID, "recipients", sent,
		"request_id", logging.RequestID(ctx))
	return sent, nil
}

// RejectContent removes a question or an answer through the normal delete
// paths, so the same cleanup applies.
func (s *AdminService) RejectContent(ctx context.Context, caller *models.User, kind, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	switch kind {
	case ContentQuestion:
		return s.questions.Delete(ctx, id, caller)
	case ContentAnswer:
		return s.answers.Delete(ctx, id, caller)
	default:
		return fmt.Errorf("%w: content type must be %q or %q", ErrBadRequest, ContentQuestion, ContentAnswer)
	}
}

func (s *AdminService) Reports(ctx context.Context, caller *models.User) (*Reports, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	r := &Reports{GeneratedAt: time.Now().UTC()}
	counts := []struct {
		dst   *int64
		count func() (int64, error)
	}{
		{&r.TotalUsers, func() (int64, error) { return s.store.Users().Count(ctx, "") }},
		{&r.TotalQuestions, func() (int64, error) { return s.store.Questions().Count(ctx, "") }},
		{&r.TotalAnswers, func() (int64, error) { return s.store.Answers().Count(ctx, "") }},
		{&r.TotalVotes, func() (int64, error) { return s.store.Votes().Count(ctx, "") }},
		{&r.BannedUsers, func() (int64, error) { return s.store.Users().Count(ctx, "is_banned = ?", true) }},
	}
	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return r, nil
}
