package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humbleop/internal/testutil"
)

func TestBadgeRepository_AwardOnce(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	granted, err := repo.Award(ctx, "alice", "First blood")
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = repo.Award(ctx, "alice", "First blood")
	require.NoError(t, err)
	assert.False(t, granted)

	badges, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, "First blood", badges[0].Name)
}

func TestBadgeRepository_SameBadgeDifferentUsers(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	granted, err := repo.Award(ctx, "alice", "First Responder")
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = repo.Award(ctx, "bob", "First Responder")
	require.NoError(t, err)
	assert.True(t, granted)
}
