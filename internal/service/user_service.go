package service

import (
	"context"

	"humbleop/internal/models"
	"humbleop/internal/repository"
)

type UserService struct {
	userRepo  repository.UserRepository
	badgeRepo repository.BadgeRepository
}

type UpdateProfileInput struct {
	Username  string
	Bio       string
	AvatarURL string
}

// Profile is a user together with their earned badges.
type Profile struct {
	User   *models.User    `json:"user"`
	Badges []*models.Badge `json:"badges"`
}

func NewUserService(userRepo repository.UserRepository, badgeRepo repository.BadgeRepository) *UserService {
	return &UserService{userRepo: userRepo, badgeRepo: badgeRepo}
}

func (s *UserService) GetProfile(ctx context.Context, username string) (*Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	badges, err := s.badgeRepo.ListByUser(ctx, username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &Profile{User: user, Badges: badges}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	const maxBioLen = 500

	user, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}

	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.AvatarURL != "" {
		user.AvatarURL = in.AvatarURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
