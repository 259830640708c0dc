package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/emilythestrangee/stackit/backend/internal/auth"
	"github.com/emilythestrangee/stackit/backend/internal/database"
	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/store"
)

type fixture struct {
	svc   *Services
	store *store.Store
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewInMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := db.Store()
	svc := New(st, Options{
		Hasher: &auth.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens: auth.NewTokenIssuer(auth.TokenConfig{SigningKey: []byte("test-secret"), TTL: time.Hour}),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &fixture{svc: svc, store: st, ctx: context.Background()}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.svc.Auth.Register(f.ctx, name, name+"@example.com", "secret123")
	require.NoError(t, err)
	return u
}

func (f *fixture) admin(t *testing.T, name string) *models.User {
	t.Helper()
	u := f.user(t, name)
	u, err := f.svc.Auth.Promote(f.ctx, u.Email)
	require.NoError(t, err)
	return u
}

func (f *fixture) question(t *testing.T, author *models.User, title string, tags ...string) *models.Question {
	t.Helper()
	q, err := f.svc.Questions.Create(f.ctx, title, "body of "+title, tags, author)
	require.NoError(t, err)
	return q
}

func (f *fixture) answer(t *testing.T, q *models.Question, author *models.User, content string) *models.Answer {
	t.Helper()
	a, err := f.svc.Answers.Create(f.ctx, q.ID, content, author)
	require.NoError(t, err)
	return a
}

func (f *fixture) reloadQuestion(t *testing.T, id string) *models.Question {
	t.Helper()
	q, err := f.store.Questions().Get(f.ctx, id)
	require.NoError(t, err)
	return q
}

func (f *fixture) reloadAnswer(t *testing.T, id string) *models.Answer {
	t.Helper()
	a, err := f.store.Answers().Get(f.ctx, id)
	require.NoError(t, err)
	return a
}
