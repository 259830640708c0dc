// Package service holds the forum's business rules: credentials, questions,
// the answer and vote engine, tags, notifications and moderation.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/emilythestrangee/stackit/backend/internal/auth"
	"github.com/emilythestrangee/stackit/backend/internal/store"
)

type Options struct {
	Hasher auth.PasswordHasher
	Tokens *auth.TokenIssuer
	Logger *slog.Logger
}

// Services wires every service over one store. Question and answer mutations
// share a per-question lock so each aggregate changes one request at a time.
type Services struct {
	Auth          *AuthService
	Questions     *QuestionService
	Answers       *AnswerService
	Tags          *TagService
	Notifications *NotificationService
	Admin         *AdminService
}

func New(st *store.Store, opts Options) *Services {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	hasher := opts.Hasher
	if hasher == nil {
		hasher = auth.NewBcryptHasher()
	}

	locks := newKeyedMutex()
	notifications := &NotificationService{store: st, log: log}
	questions := &QuestionService{store: st, locks: locks, log: log}
	answers := &AnswerService{store: st, locks: locks, notifications: notifications, log: log}

	return &Services{
		Auth:          &AuthService{store: st, hasher: hasher, tokens: opts.Tokens, log: log},
		Questions:     questions,
		Answers:       answers,
		Tags:          &TagService{store: st},
		Notifications: notifications,
		Admin: &AdminService{
			store:         st,
			questions:     questions,
			answers:       answers,
			notifications: notifications,
			log:           log,
		},
	}
}

// storeErr maps store failures onto the service taxonomy, keeping anything
// unexpected as-is so the transport reports it as an internal error.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrRecordNotFound):
		return fmt.Errorf("%w: %s not found", ErrNotFound, what)
	case errors.Is(err, store.ErrInvalidRecord):
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	default:
		return err
	}
}
