package account

import (
	"context"
	"errors"
)

// Store errors.
var (
	// ErrAccountExists is returned when registering an email that already has an account.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountNotFound is returned when no account matches the given email.
	ErrAccountNotFound = errors.New("account not found")
	// ErrKeyNotFound is returned when no credential matches the given API key.
	ErrKeyNotFound = errors.New("api key not found")
)

// AccountStore persists registered user accounts.
type AccountStore interface {
	// Create inserts a new account. Returns ErrAccountExists if the email is taken.
	Create(ctx context.Context, acct Account) error
	// FindByEmail looks up an account. Returns ErrAccountNotFound if absent.
	FindByEmail(ctx context.Context, email string) (Account, error)
}

// CredentialStore persists API keys issued to accounts.
type CredentialStore interface {
	// Insert stores a newly issued key.
	Insert(ctx context.Context, key APIKey) error
	// FindByKey looks up the credential record. Returns ErrKeyNotFound if absent.
	FindByKey(ctx context.Context, key string) (APIKey, error)
}
