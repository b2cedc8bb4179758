package repository

import (
	"context"

	"humbleop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BadgeRepository defines the interface for badge data operations
type BadgeRepository interface {
	Award(ctx context.Context, user, name string) (bool, error)
	ListByUser(ctx context.Context, user string) ([]*models.Badge, error)
}

type badgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

// Award grants a badge once per (username, name). Returns false when the
// user already holds it.
func (r *badgeRepository) Award(ctx context.Context, username, name string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Badge{Username: username, Name: name})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *badgeRepository) ListByUser(ctx context.Context, username string) ([]*models.Badge, error) {
	var badges []*models.Badge
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at ASC").
		Find(&badges).Error
	return badges, err
}
