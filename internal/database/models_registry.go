package database

import "humbleop/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
		&models.Like{},
		&models.Flag{},
		&models.Badge{},
	}
}
