//go:build integration
// +build integration

package database

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/emilythestrangee/stackit/backend/internal/config"
	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/store"
)

// setupPostgres starts a PostgreSQL container and returns a config pointing at it.
func setupPostgres(t *testing.T) config.Config {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("stackit"),
		postgres.WithUsername("stackit"),
		postgres.WithPassword("stackit"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	u, err := url.Parse(connStr)
	require.NoError(t, err)
	password, _ := u.User.Password()

	return config.Config{
		DBDriver:   config.DriverPostgres,
		DBHost:     u.Hostname(),
		DBPort:     u.Port(),
		DBUser:     u.User.Username(),
		DBPassword: password,
		DBName:     "stackit",
		DBSSLMode:  "disable",
	}
}

func TestPostgresStore(t *testing.T) {
	cfg := setupPostgres(t)
	ctx := context.Background()

	svc, err := New(cfg, nil)
	require.NoError(t, err)
	defer svc.Close()
	assert.Equal(t, "up", svc.Health()["status"])

	st := svc.Store()
	require.NoError(t, st.Migrate(ctx))

	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, st.Users().Create(ctx, user))

	dup := &models.User{Username: "alice2", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.ErrorIs(t, st.Users().Create(ctx, dup), store.ErrDuplicate)

	q := &models.Question{Title: "t", Description: "d", Tags: []string{"go", "sql"}, AuthorID: user.ID}
	require.NoError(t, st.Questions().Create(ctx, q))

	got, err := st.Questions().Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, got.Tags)

	a := &models.Answer{Content: "c", QuestionID: q.ID, AuthorID: user.ID}
	require.NoError(t, st.Answers().Create(ctx, a))

	require.NoError(t, st.Votes().Create(ctx, &models.Vote{AnswerID: a.ID, UserID: user.ID, VoteType: models.VoteUp}))
	err = st.Votes().Create(ctx, &models.Vote{AnswerID: a.ID, UserID: user.ID, VoteType: models.VoteDown})
	require.ErrorIs(t, err, store.ErrDuplicate, "one vote per user per answer")
}
