package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/emilythestrangee/stackit/backend/internal/logging"
	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/store"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type QuestionService struct {
	store *store.Store
	locks *keyedMutex
	log   *slog.Logger
}

type ListQuestionsParams struct {
	Page   int
	Limit  int
	Search string
	Tags   []string
}

// QuestionPatch is a partial update; nil fields are left alone.
type QuestionPatch struct {
	Title       *string
	Description *string
	Tags        *[]string
}

func (s *QuestionService) Create(ctx context.Context, title, description string, tags []string, author *models.User) (*models.Question, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := checkTitle(title); err != nil {
		return nil, err
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrBadRequest)
	}
	tags, err := normalizeTags(tags)
	if err != nil {
		return nil, err
	}

	q := &models.Question{
		Title:          title,
		Description:    description,
		Tags:           tags,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
	}
	if err := s.store.Questions().Create(ctx, q); err != nil {
		return nil, storeErr(err, "question")
	}

	s.log.InfoContext(ctx, "question created", "question_id", q.ID, "author_id", author.ID,
		"request_id", logging.RequestID(ctx))
	return q, nil
}

// List returns one page of questions, newest first, plus the number of
// questions matching the filters.
func (s *QuestionService) List(ctx context.Context, p ListQuestionsParams) ([]models.Question, int64, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Page < 1 {
		return nil, 0, fmt.Errorf("%w: page must be at least 1", ErrBadRequest)
	}
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		return nil, 0, fmt.Errorf("%w: limit must be between 1 and %d", ErrBadRequest, MaxPageLimit)
	}

	q := store.Query{Order: "created_at DESC, id DESC"}
	if search := strings.TrimSpace(p.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		q.Where = `LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`
		q.Args = []any{pattern, pattern}
	}

	wanted := cleanTagFilter(p.Tags)
	offset := (p.Page - 1) * p.Limit

	if len(wanted) == 0 {
		total, err := s.store.Questions().Count(ctx, q.Where, q.Args...)
		if err != nil {
			return nil, 0, err
		}
		q.Limit, q.Offset = p.Limit, offset
		items, err := s.store.Questions().Find(ctx, q)
		if err != nil {
			return nil, 0, err
		}
		return items, total, nil
	}

	// Tags live in a JSON column, so the tag filter runs here.
	all, err := s.store.Questions().Find(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	matched := all[:0]
	for _, question := range all {
		if hasAllTags(question.Tags, wanted) {
			matched = append(matched, question)
		}
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.Question{}, total, nil
	}
	end := min(offset+p.Limit, len(matched))
	return matched[offset:end], total, nil
}

// Get returns the question and counts the read: view_count goes up by one on
// every call.
func (s *QuestionService) Get(ctx context.Context, id string) (*models.Question, error) {
	if err := s.store.Questions().Increment(ctx, id, "view_count", 1); err != nil {
		return nil, storeErr(err, "question")
	}
	q, err := s.store.Questions().Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "question")
	}
	return q, nil
}

func (s *QuestionService) Update(ctx context.Context, id string, patch QuestionPatch, caller *models.User) (*models.Question, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := checkTitle(title); err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: description cannot be empty", ErrBadRequest)
		}
		patch.Description = &description
	}
	if patch.Tags != nil {
		tags, err := normalizeTags(*patch.Tags)
		if err != nil {
			return nil, err
		}
		patch.Tags = &tags
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	var updated *models.Question
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		q, err := tx.Questions().Get(ctx, id)
		if err != nil {
			return storeErr(err, "question")
		}
		if q.AuthorID != caller.ID {
			return fmt.Errorf("%w: only the author can edit this question", ErrForbidden)
		}

		if patch.Title != nil {
			q.Title = *patch.Title
		}
		if patch.Description != nil {
			q.Description = *patch.Description
		}
		if patch.Tags != nil {
			q.Tags = *patch.Tags
		}
		// Get bumps view_count without the lock; leave the counters alone.
		if err := tx.Questions().Update(ctx, q, "title", "description", "tags", "updated_at"); err != nil {
			return storeErr(err, "question")
		}
		updated, err = tx.Questions().Get(ctx, id)
		return storeErr(err, "question")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the question together with its answers, their votes and any
// notifications pointing at them.
func (s *QuestionService) Delete(ctx context.Context, id string, caller *models.User) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		q, err := tx.Questions().Get(ctx, id)
		if err != nil {
			return storeErr(err, "question")
		}
		if q.AuthorID != caller.ID && !caller.IsAdmin() {
			return fmt.Errorf("%w: not allowed to delete this question", ErrForbidden)
		}
		return deleteQuestionTree(ctx, tx, q.ID)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "question deleted", "question_id", id, "by", caller.ID,
		"request_id", logging.RequestID(ctx))
	return nil
}

func deleteQuestionTree(ctx context.Context, tx *store.Store, questionID string) error {
	answers, err := tx.Answers().Find(ctx, store.Query{Where: "question_id = ?", Args: []any{questionID}})
	if err != nil {
		return err
	}
	related := []string{questionID}
	if len(answers) > 0 {
		ids := make([]string, 0, len(answers))
		for _, a := range answers {
			ids = append(ids, a.ID)
		}
		if _, err := tx.Votes().DeleteWhere(ctx, "answer_id IN ?", ids); err != nil {
			return err
		}
		if _, err := tx.Answers().DeleteWhere(ctx, "question_id = ?", questionID); err != nil {
			return err
		}
		related = append(related, ids...)
	}
	if _, err := tx.Notifications().DeleteWhere(ctx, "related_id IN ?", related); err != nil {
		return err
	}
	return storeErr(tx.Questions().Delete(ctx, questionID), "question")
}

func checkTitle(title string) error {
	n := len([]rune(title))
	if n == 0 {
		return fmt.Errorf("%w: title is required", ErrBadRequest)
	}
	if n > 300 {
		return fmt.Errorf("%w: title must be at most 300 characters", ErrBadRequest)
	}
	return nil
}

// normalizeTags trims every tag and drops case-insensitive repeats, keeping the
// first spelling seen.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	if err := models.Validator().Var(out, "tags"); err != nil {
		return nil, fmt.Errorf("%w: at most %d tags of %d-%d characters each", ErrBadRequest,
			models.MaxTags, models.MinTagLength, models.MaxTagLength)
	}
	return out, nil
}

func cleanTagFilter(tags []string) []string {
	var out []string
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func hasAllTags(have, wanted []string) bool {
	for _, w := range wanted {
		found := false
		for _, h := range have {
			if strings.EqualFold(h, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
