package service

import (
	"context"
	"strings"
	"testing"

	"humbleop/internal/models"
	"humbleop/internal/repository"
	"humbleop/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) (*UserService, repository.UserRepository, repository.BadgeRepository) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	users := repository.NewUserRepository(db)
	badges := repository.NewBadgeRepository(db)
	return NewUserService(users, badges), users, badges
}

func TestUserService_GetProfile(t *testing.T) {
	svc, users, badges := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	}))
	_, err := badges.Award(ctx, "alice", BadgeFirstBlood)
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.User.Username)
	require.Len(t, profile.Badges, 1)
	assert.Equal(t, BadgeFirstBlood, profile.Badges[0].Name)
}

func TestUserService_GetProfileNotFound(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	_, err := svc.GetProfile(context.Background(), "ghost")
	requireAppError(t, err, "NOT_FOUND")
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	}))

	updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{
		Username:  "alice",
		Bio:       "professional contrarian",
		AvatarURL: "https://cdn.example.com/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "professional contrarian", updated.Bio)
	assert.Equal(t, "https://cdn.example.com/a.png", updated.AvatarURL)

	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{
		Username: "alice",
		Bio:      strings.Repeat("x", 501),
	})
	requireAppError(t, err, "VALIDATION_ERROR")
}
