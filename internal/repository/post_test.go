package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humbleop/internal/models"
	"humbleop/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{
		ID:     "p1",
		Author: "alice",
		Body:   "hot take about #golang",
		Tags:   []models.Tag{{Name: "golang"}},
	}
	require.NoError(t, repo.Create(ctx, post))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Author)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "golang", got.Tags[0].Name)
}

func TestPostRepository_ListByTag(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Post{
		ID: "p1", Author: "alice", Body: "a", Tags: []models.Tag{{Name: "golang"}},
	}))
	require.NoError(t, repo.Create(ctx, &models.Post{
		ID: "p2", Author: "bob", Body: "b", Tags: []models.Tag{{Name: "rust"}},
	}))
	require.NoError(t, repo.Create(ctx, &models.Post{
		ID: "p3", Author: "carol", Body: "c", Tags: []models.Tag{{Name: "golang"}},
	}))

	posts, err := repo.ListByTag(ctx, "golang", 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	ids := []string{posts[0].ID, posts[1].ID}
	assert.ElementsMatch(t, []string{"p1", "p3"}, ids)
}

func TestPostRepository_UpdatePersistsDuelFields(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Post{ID: "p1", Author: "alice", Body: "a"}))

	post, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	post.Winner = strPtr("bob")
	post.Second = strPtr("carol")
	post.InitialVotes = 50
	post.Started = true
	post.DuelStartTime = &now
	require.NoError(t, repo.Update(ctx, post))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got.Winner)
	assert.Equal(t, "bob", *got.Winner)
	require.NotNil(t, got.Second)
	assert.Equal(t, "carol", *got.Second)
	assert.Equal(t, 50, got.InitialVotes)
	assert.True(t, got.Started)
	require.NotNil(t, got.DuelStartTime)
}

func TestPostRepository_ListPendingDuels(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	deadline := time.Now().Add(time.Hour)

	// Drafting post with no deadline: not pending.
	require.NoError(t, repo.Create(ctx, &models.Post{ID: "draft", Author: "a", Body: "x"}))
	// Open voting window: pending.
	require.NoError(t, repo.Create(ctx, &models.Post{
		ID: "voting", Author: "a", Body: "x", VotingDeadline: &deadline,
	}))
	// Winner determined, not completed: pending.
	require.NoError(t, repo.Create(ctx, &models.Post{
		ID: "dueling", Author: "a", Body: "x", Winner: strPtr("bob"), InitialVotes: 50,
	}))
	// Completed duel: settled.
	require.NoError(t, repo.Create(ctx, &models.Post{
		ID: "done", Author: "a", Body: "x", Winner: strPtr("bob"), Completed: true,
	}))

	pending, err := repo.ListPendingDuels(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"voting", "dueling"}, ids)
}

func TestPostRepository_CountCompletedWins(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Post{
		ID: "p1", Author: "a", Body: "x", Winner: strPtr("bob"), Completed: true,
	}))
	require.NoError(t, repo.Create(ctx, &models.Post{
		ID: "p2", Author: "a", Body: "x", Winner: strPtr("bob"), Completed: false,
	}))
	require.NoError(t, repo.Create(ctx, &models.Post{
		ID: "p3", Author: "a", Body: "x", Winner: strPtr("carol"), Completed: true,
	}))

	wins, err := repo.CountCompletedWins(ctx, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, wins)
}

func TestPostRepository_CountParticipations(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Post{
		ID: "p1", Author: "a", Body: "x", Winner: strPtr("bob"),
	}))
	require.NoError(t, repo.Create(ctx, &models.Post{
		ID: "p2", Author: "a", Body: "x", Winner: strPtr("carol"), Second: strPtr("bob"),
	}))
	require.NoError(t, repo.Create(ctx, &models.Post{
		ID: "p3", Author: "a", Body: "x", Winner: strPtr("carol"),
	}))

	count, err := repo.CountParticipations(ctx, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
