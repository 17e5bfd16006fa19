package persistence

import (
	"context"

	"github.com/simdex/simdex/internal/database"
)

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(ctx context.Context, db database.Database) error {
	return db.Session(ctx).AutoMigrate(&APIKeyModel{})
}
