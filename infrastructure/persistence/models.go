// Package persistence provides database storage implementations.
package persistence

import "time"

// APIKeyModel is the GORM model for the api_keys table.
type APIKeyModel struct {
	APIKey      string    `gorm:"column:api_key;primaryKey;size:64"`
	UserEmail   string    `gorm:"column:user_email;size:255;index"`
	AccountType string    `gorm:"column:account_type;size:32"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

// TableName sets the table name for APIKeyModel.
func (APIKeyModel) TableName() string { return "api_keys" }
