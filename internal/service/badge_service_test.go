package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"humbleop/internal/models"
	"humbleop/internal/repository"
	"humbleop/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBadgeFixture(t *testing.T) (*BadgeService, *gorm.DB) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	svc := NewBadgeService(
		repository.NewBadgeRepository(db),
		repository.NewPostRepository(db),
		repository.NewVoteRepository(db),
		repository.NewCommentRepository(db),
		20, 10, 10,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, db
}

func badgeNames(t *testing.T, svc *BadgeService, username string) []string {
	t.Helper()
	badges, err := svc.ListBadges(context.Background(), username)
	require.NoError(t, err)
	names := make([]string, 0, len(badges))
	for _, b := range badges {
		names = append(names, b.Name)
	}
	return names
}

func TestBadgeService_FirstBloodOnFirstPost(t *testing.T) {
	svc, db := newBadgeFixture(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Post{ID: "p1", Author: "alice", Body: "b"}).Error)
	require.NoError(t, svc.Evaluate(ctx, "alice"))

	assert.Contains(t, badgeNames(t, svc, "alice"), BadgeFirstBlood)
}

func TestBadgeService_FirstResponderOnFirstComment(t *testing.T) {
	svc, db := newBadgeFixture(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Comment{PostID: "p1", Commenter: "bob", Text: "t"}).Error)
	require.NoError(t, svc.Evaluate(ctx, "bob"))

	names := badgeNames(t, svc, "bob")
	assert.Contains(t, names, BadgeFirstResponder)
	assert.NotContains(t, names, BadgeConsistentDebater)
}

func TestBadgeService_WinThresholds(t *testing.T) {
	svc, db := newBadgeFixture(t)
	ctx := context.Background()

	winner := "carol"
	for i := 0; i < 10; i++ {
		post := &models.Post{
			ID:        fmt.Sprintf("p%d", i),
			Author:    "author",
			Body:      "b",
			Winner:    &winner,
			Completed: true,
		}
		require.NoError(t, db.Create(post).Error)
	}
	require.NoError(t, svc.Evaluate(ctx, "carol"))

	names := badgeNames(t, svc, "carol")
	assert.Contains(t, names, BadgeBaptismOfFire)
	assert.NotContains(t, names, BadgeGreatDebater)

	// Wins alone earn nothing vote-based: popularity tracks votes received.
	assert.NotContains(t, names, BadgePopularDebater)
}

func TestBadgeService_PopularDebaterOnVotesReceived(t *testing.T) {
	svc, db := newBadgeFixture(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, db.Create(&models.Vote{
			PostID:    fmt.Sprintf("p%d", i),
			Voter:     fmt.Sprintf("voter-%d", i),
			Candidate: "grace",
		}).Error)
	}
	require.NoError(t, svc.Evaluate(ctx, "grace"))

	names := badgeNames(t, svc, "grace")
	assert.Contains(t, names, BadgePopularDebater)
	// One vote per post never reaches the single-post concentration bar.
	assert.NotContains(t, names, BadgeInsightful)
}

func TestBadgeService_ConsistentDebaterOnParticipations(t *testing.T) {
	svc, db := newBadgeFixture(t)
	ctx := context.Background()

	// Runner-up finishes count as participation, no completion required.
	second := "heidi"
	winner := "other"
	for i := 0; i < 10; i++ {
		require.NoError(t, db.Create(&models.Post{
			ID:     fmt.Sprintf("p%d", i),
			Author: "author",
			Body:   "b",
			Winner: &winner,
			Second: &second,
		}).Error)
	}
	require.NoError(t, svc.Evaluate(ctx, "heidi"))

	names := badgeNames(t, svc, "heidi")
	assert.Contains(t, names, BadgeConsistentDebater)
	assert.NotContains(t, names, BadgeBaptismOfFire)
}

func TestBadgeService_UncompletedWinsDoNotCount(t *testing.T) {
	svc, db := newBadgeFixture(t)
	ctx := context.Background()

	winner := "dave"
	require.NoError(t, db.Create(&models.Post{ID: "p1", Author: "a", Body: "b", Winner: &winner}).Error)
	require.NoError(t, svc.Evaluate(ctx, "dave"))

	assert.NotContains(t, badgeNames(t, svc, "dave"), BadgeBaptismOfFire)
}

func TestBadgeService_SerialVoterAndInsightful(t *testing.T) {
	svc, db := newBadgeFixture(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, db.Create(&models.Vote{
			PostID:    fmt.Sprintf("p%d", i),
			Voter:     "eve",
			Candidate: "frank",
		}).Error)
	}
	require.NoError(t, svc.Evaluate(ctx, "eve"))
	assert.Contains(t, badgeNames(t, svc, "eve"), BadgeSerialVoter)

	// frank's votes are spread one per post, short of the 20-on-one-post bar.
	require.NoError(t, svc.Evaluate(ctx, "frank"))
	assert.NotContains(t, badgeNames(t, svc, "frank"), BadgeInsightful)

	for i := 0; i < 20; i++ {
		require.NoError(t, db.Create(&models.Vote{
			PostID:    "focus",
			Voter:     fmt.Sprintf("voter-%d", i),
			Candidate: "frank",
		}).Error)
	}
	require.NoError(t, svc.Evaluate(ctx, "frank"))
	assert.Contains(t, badgeNames(t, svc, "frank"), BadgeInsightful)
}

func TestBadgeService_EvaluateIsIdempotent(t *testing.T) {
	svc, db := newBadgeFixture(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Post{ID: "p1", Author: "alice", Body: "b"}).Error)
	require.NoError(t, svc.Evaluate(ctx, "alice"))
	require.NoError(t, svc.Evaluate(ctx, "alice"))

	badges, err := svc.ListBadges(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, badges, 1)
}
