package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/stackit/backend/internal/models"
)

func TestAdminOperationsRequireRole(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bobby")

	_, err := f.svc.Admin.BanUser(f.ctx, alice, bob.ID, "spam")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Admin.Broadcast(f.ctx, alice, "hi")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.svc.Admin.RejectContent(f.ctx, alice, ContentQuestion, "x"), ErrForbidden)
	_, err = f.svc.Admin.Reports(f.ctx, alice)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBanUser(t *testing.T) {
	f := newFixture(t)
	root := f.admin(t, "root")
	bob := f.user(t, "bobby")

	banned, err := f.svc.Admin.BanUser(f.ctx, root, bob.ID, "spam")
	require.NoError(t, err)
	assert.True(t, banned.IsBanned)
	assert.Equal(t, "spam", banned.BanReason)
	assert.NotNil(t, banned.BannedAt)

	stored, err := f.store.Users().Get(f.ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBanned)

	// Bans do not revoke credentials.
	_, err = f.svc.Auth.Authenticate(f.ctx, bob.Email, "secret123")
	assert.NoError(t, err)

	_, err = f.svc.Admin.BanUser(f.ctx, root, root.ID, "")
	assert.ErrorIs(t, err, ErrBadRequest)
	_, err = f.svc.Admin.BanUser(f.ctx, root, "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBroadcast(t *testing.T) {
	f := newFixture(t)
	root := f.admin(t, "root")
	alice := f.user(t, "alice")

	sent, err := f.svc.Admin.Broadcast(f.ctx, root, "maintenance tonight")
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	items, _, err := f.svc.Notifications.List(f.ctx, alice, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.NotificationAdminMessage, items[0].Type)
	assert.Equal(t, "maintenance tonight", items[0].Message)

	_, err = f.svc.Admin.Broadcast(f.ctx, root, " ")
	assert.ErrorIs(t, err, ErrBadRequest)
	_, err = f.svc.Admin.Broadcast(f.ctx, root, strings.Repeat("x", MaxBroadcastLength+1))
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestRejectContent(t *testing.T) {
	f := newFixture(t)
	root := f.admin(t, "root")
	alice := f.user(t, "alice")
	q := f.question(t, alice, "spam question")
	a := f.answer(t, q, alice, "spam answer")
	other := f.question(t, alice, "keeper")

	require.NoError(t, f.svc.Admin.RejectContent(f.ctx, root, ContentAnswer, a.ID))
	assert.Zero(t, f.reloadQuestion(t, q.ID).AnswerCount)

	require.NoError(t, f.svc.Admin.RejectContent(f.ctx, root, ContentQuestion, q.ID))
	_, err := f.store.Questions().Get(f.ctx, q.ID)
	assert.Error(t, err)
	f.reloadQuestion(t, other.ID)

	assert.ErrorIs(t, f.svc.Admin.RejectContent(f.ctx, root, "comment", q.ID), ErrBadRequest)
	assert.ErrorIs(t, f.svc.Admin.RejectContent(f.ctx, root, ContentQuestion, q.ID), ErrNotFound)
}

func TestReports(t *testing.T) {
	f := newFixture(t)
	root := f.admin(t, "root")
	alice := f.user(t, "alice")
	bob := f.user(t, "bobby")
	q := f.question(t, alice, "counted")
	a := f.answer(t, q, bob, "answer")
	_, err := f.svc.Answers.Vote(f.ctx, a.ID, models.VoteUp, alice)
	require.NoError(t, err)
	_, err = f.svc.Admin.BanUser(f.ctx, root, bob.ID, "")
	require.NoError(t, err)

	r, err := f.svc.Admin.Reports(f.ctx, root)
	require.NoError(t, err)
	assert.EqualValues(t, 3, r.TotalUsers)
	assert.EqualValues(t, 1, r.TotalQuestions)
	assert.EqualValues(t, 1, r.TotalAnswers)
	assert.EqualValues(t, 1, r.TotalVotes)
	assert.EqualValues(t, 1, r.BannedUsers)
	assert.False(t, r.GeneratedAt.IsZero())
}
