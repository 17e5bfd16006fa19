package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/simdex/simdex/domain/account"
	"github.com/simdex/simdex/internal/database"
)

// CredentialStore implements account.CredentialStore using GORM.
type CredentialStore struct {
	db     database.Database
	mapper APIKeyMapper
}

// NewCredentialStore creates a new CredentialStore.
func NewCredentialStore(db database.Database) CredentialStore {
	return CredentialStore{db: db}
}

// Insert stores a newly issued API key.
func (s CredentialStore) Insert(ctx context.Context, key account.APIKey) error {
	model := s.mapper.ToModel(key)
	model.CreatedAt = time.Now()

	result := s.db.Session(ctx).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("insert api key: %w", result.Error)
	}
	return nil
}

// FindByKey looks up the credential record for an opaque key.
func (s CredentialStore) FindByKey(ctx context.Context, key string) (account.APIKey, error) {
	var model APIKeyModel
	result := s.db.Session(ctx).Where("api_key = ?", key).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return account.APIKey{}, fmt.Errorf("%w: %w", account.ErrKeyNotFound, database.ErrNotFound)
		}
		return account.APIKey{}, fmt.Errorf("find api key: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}
