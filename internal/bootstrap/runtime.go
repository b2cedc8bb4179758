// Package bootstrap initializes runtime dependencies shared by the server
// and CLI commands.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"humbleop/internal/cache"
	"humbleop/internal/config"
	"humbleop/internal/database"
	"humbleop/internal/models"
	"humbleop/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedBuiltIns bool
}

// InitRuntime connects to DB and Redis and optionally runs built-in seeding.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	// Connect DB
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDemoAccount(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap demo account: %w", err)
	}

	if opts.SeedBuiltIns {
		if err := seed.Tags(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in tags: %w", err)
		}
	}

	return db, r, nil
}

// ensureDemoAccount creates a well-known login for local development so the
// frontend can be exercised against a fresh database. Development only.
func ensureDemoAccount(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	var existing models.User
	err := db.First(&existing, "username = ?", "demo").Error
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	demo := models.User{
		Username:     "demo",
		Email:        "demo@example.com",
		PasswordHash: string(hashedPassword),
		Bio:          "Local development account.",
	}
	if err := db.Create(&demo).Error; err != nil {
		return err
	}

	log.Println("development demo account ensured (demo / password123)")
	return nil
}
