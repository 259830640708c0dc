package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTagsGroupsCaseInsensitively(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.question(t, alice, "first", "Go")
	f.question(t, alice, "second", "go")

	tags, err := f.svc.Tags.List(f.ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, 2, tags[0].UsageCount)
	assert.Equal(t, "go", tags[0].Name, "newest question's spelling wins")
}

func TestListTagsOrderingSearchAndLimit(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.question(t, alice, "a", "golang", "sql")
	f.question(t, alice, "b", "golang", "docker")
	f.question(t, alice, "c", "golang", "sql")

	tags, err := f.svc.Tags.List(f.ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "golang", tags[0].Name)
	assert.Equal(t, 3, tags[0].UsageCount)
	assert.Equal(t, "sql", tags[1].Name)
	assert.Equal(t, "docker", tags[2].Name)

	tags, err = f.svc.Tags.List(f.ctx, "SQ", 0)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "sql", tags[0].Name)

	tags, err = f.svc.Tags.List(f.ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	_, err = f.svc.Tags.List(f.ctx, "", -1)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestValidateTag(t *testing.T) {
	f := newFixture(t)

	tag, err := f.svc.Tags.Validate(f.ctx, "  kubernetes ")
	require.NoError(t, err)
	assert.Equal(t, "kubernetes", tag.Name)
	assert.Zero(t, tag.UsageCount)

	_, err = f.svc.Tags.Validate(f.ctx, "k")
	assert.ErrorIs(t, err, ErrBadRequest)
	_, err = f.svc.Tags.Validate(f.ctx, strings.Repeat("k", 31))
	assert.ErrorIs(t, err, ErrBadRequest)

	tags, err := f.svc.Tags.List(f.ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, tags, "validation persists nothing")
}
