package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humbleop/internal/models"
	"humbleop/internal/testutil"
)

func TestCommentRepository_CreateAndList(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Comment{PostID: "p1", Commenter: "alice", Text: "first"}))
	require.NoError(t, repo.Create(ctx, &models.Comment{PostID: "p1", Commenter: "bob", Text: "second"}))
	require.NoError(t, repo.Create(ctx, &models.Comment{PostID: "p2", Commenter: "carol", Text: "other"}))

	comments, err := repo.ListByPost(ctx, "p1", 10, 0)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)

	count, err := repo.CountByPost(ctx, "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestCommentRepository_HasCommented(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Comment{PostID: "p1", Commenter: "alice", Text: "hi"}))

	ok, err := repo.HasCommented(ctx, "p1", "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasCommented(ctx, "p1", "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommentRepository_CountNonDuelByCommenter(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Comment{PostID: "p1", Commenter: "alice", Text: "take"}))
	require.NoError(t, repo.Create(ctx, &models.Comment{PostID: "p1", Commenter: "alice", Text: "duel reply", IsDuel: true}))

	count, err := repo.CountNonDuelByCommenter(ctx, "p1", "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
