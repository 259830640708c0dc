package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/emilythestrangee/stackit/backend/internal/logging"
	"github.com/emilythestrangee/stackit/backend/internal/metrics"
	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/store"
)

// AnswerService owns answers, votes and the accepted-answer pointer. Every
// mutation holds the parent question's lock and runs in one transaction.
type AnswerService struct {
	store         *store.Store
	locks         *keyedMutex
	notifications *NotificationService
	log           *slog.Logger
}

func (s *AnswerService) Create(ctx context.Context, questionID, content string, author *models.User) (*models.Answer, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrBadRequest)
	}

	unlock := s.locks.Lock(questionID)
	defer unlock()

	var created *models.Answer
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		q, err := tx.Questions().Get(ctx, questionID)
		if err != nil {
			return storeErr(err, "question")
		}

		a := &models.Answer{
			Content:        content,
			QuestionID:     q.ID,
			AuthorID:       author.ID,
			AuthorUsername: author.Username,
		}
		if err := tx.Answers().Create(ctx, a); err != nil {
			return storeErr(err, "answer")
		}
		if err := recountAnswers(ctx, tx, q.ID); err != nil {
			return err
		}

		if q.AuthorID != author.ID {
			msg := fmt.Sprintf("%s answered your question: %s", author.Username, q.Title)
			if err := s.notifications.notify(ctx, tx, q.AuthorID, models.NotificationNewAnswer, msg, &q.ID); err != nil {
				return err
			}
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "answer created", "answer_id", created.ID, "question_id", questionID,
		"request_id", logging.RequestID(ctx))
	return created, nil
}

// List orders answers by sortBy and then moves the accepted answer, if any,
// to the front. Unknown sort keys fall back to newest first.
func (s *AnswerService) List(ctx context.Context, questionID, sortBy string) ([]models.Answer, error) {
	if _, err := s.store.Questions().Get(ctx, questionID); err != nil {
		return nil, storeErr(err, "question")
	}

	order := "created_at DESC, id DESC"
	switch sortBy {
	case models.SortOldest:
		order = "created_at ASC, id ASC"
	case models.SortVotes:
		order = "vote_count DESC, created_at DESC, id DESC"
	}

	answers, err := s.store.Answers().Find(ctx, store.Query{
		Where: "question_id = ?",
		Args:  []any{questionID},
		Order: order,
	})
	if err != nil {
		return nil, err
	}
	hoistAccepted(answers)
	return answers, nil
}

func hoistAccepted(answers []models.Answer) {
	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].IsAccepted && !answers[j].IsAccepted
	})
}

func (s *AnswerService) Update(ctx context.Context, id string, content *string, caller *models.User) (*models.Answer, error) {
	if content != nil {
		trimmed := strings.TrimSpace(*content)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: content cannot be empty", ErrBadRequest)
		}
		content = &trimmed
	}

	var updated *models.Answer
	err := s.withAnswer(ctx, id, func(tx *store.Store, a *models.Answer) error {
		if a.AuthorID != caller.ID {
			return fmt.Errorf("%w: only the author can edit this answer", ErrForbidden)
		}
		if content != nil {
			a.Content = *content
		}
		if err := tx.Answers().Update(ctx, a, "content", "updated_at"); err != nil {
			return storeErr(err, "answer")
		}
		var err error
		updated, err = tx.Answers().Get(ctx, id)
		return storeErr(err, "answer")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the answer and its votes, recounts the parent's answers and
// clears the accepted pointer if it referenced this answer.
func (s *AnswerService) Delete(ctx context.Context, id string, caller *models.User) error {
	err := s.withAnswer(ctx, id, func(tx *store.Store, a *models.Answer) error {
		if a.AuthorID != caller.ID && !caller.IsAdmin() {
			return fmt.Errorf("%w: not allowed to delete this answer", ErrForbidden)
		}
		if _, err := tx.Votes().DeleteWhere(ctx, "answer_id = ?", a.ID); err != nil {
			return err
		}
		if _, err := tx.Notifications().DeleteWhere(ctx, "related_id = ?", a.ID); err != nil {
			return err
		}
		if err := tx.Answers().Delete(ctx, a.ID); err != nil {
			return storeErr(err, "answer")
		}

		q, err := tx.Questions().Get(ctx, a.QuestionID)
		if err != nil {
			return storeErr(err, "question")
		}
		if err := recountAnswers(ctx, tx, q.ID); err != nil {
			return err
		}
		if q.AcceptedAnswerID != nil && *q.AcceptedAnswerID == a.ID {
			return tx.Questions().SetColumns(ctx, q.ID, map[string]any{"accepted_answer_id": nil})
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "answer deleted", "answer_id", id, "by", caller.ID,
		"request_id", logging.RequestID(ctx))
	return nil
}

// Accept marks the answer as the question's solution. Only the question's
// author may do this; any previously accepted sibling is reset.
func (s *AnswerService) Accept(ctx context.Context, id string, caller *models.User) (*models.Answer, error) {
	var accepted *models.Answer
	changed := false
	err := s.withAnswer(ctx, id, func(tx *store.Store, a *models.Answer) error {
		q, err := tx.Questions().Get(ctx, a.QuestionID)
		if err != nil {
			return storeErr(err, "question")
		}
		if q.AuthorID != caller.ID {
			return fmt.Errorf("%w: only the question author can accept an answer", ErrForbidden)
		}
		accepted = a
		if a.IsAccepted && q.AcceptedAnswerID != nil && *q.AcceptedAnswerID == a.ID {
			return nil
		}

		if _, err := tx.Answers().SetColumnsWhere(ctx, map[string]any{"is_accepted": false},
			"question_id = ? AND is_accepted = ? AND id <> ?", q.ID, true, a.ID); err != nil {
			return err
		}
		if err := tx.Answers().SetColumns(ctx, a.ID, map[string]any{"is_accepted": true}); err != nil {
			return storeErr(err, "answer")
		}
		if err := tx.Questions().SetColumns(ctx, q.ID, map[string]any{"accepted_answer_id": a.ID}); err != nil {
			return storeErr(err, "question")
		}
		a.IsAccepted = true
		changed = true

		if a.AuthorID != q.AuthorID {
			msg := fmt.Sprintf("Your answer was accepted on: %s", q.Title)
			return s.notifications.notify(ctx, tx, a.AuthorID, models.NotificationAnswerAccepted, msg, &a.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		metrics.AnswersAcceptedTotal.Inc()
		s.log.InfoContext(ctx, "answer accepted", "answer_id", id, "question_id", accepted.QuestionID,
			"request_id", logging.RequestID(ctx))
	}
	return accepted, nil
}

// withAnswer locks the answer's question and hands fn a fresh copy of the
// answer read inside the transaction.
func (s *AnswerService) withAnswer(ctx context.Context, id string, fn func(tx *store.Store, a *models.Answer) error) error {
	a, err := s.store.Answers().Get(ctx, id)
	if err != nil {
		return storeErr(err, "answer")
	}

	unlock := s.locks.Lock(a.QuestionID)
	defer unlock()

	return s.store.WithTx(ctx, func(tx *store.Store) error {
		a, err := tx.Answers().Get(ctx, id)
		if err != nil {
			return storeErr(err, "answer")
		}
		return fn(tx, a)
	})
}

func recountAnswers(ctx context.Context, tx *store.Store, questionID string) error {
	n, err := tx.Answers().Count(ctx, "question_id = ?", questionID)
	if err != nil {
		return err
	}
	return storeErr(tx.Questions().SetColumns(ctx, questionID, map[string]any{"answer_count": n}), "question")
}
