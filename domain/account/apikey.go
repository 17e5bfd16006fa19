package account

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// apiKeyBytes is the entropy of a generated key; the hex form is twice as long.
const apiKeyBytes = 16

// APIKey represents a credential record tying an opaque key to an account.
type APIKey struct {
	key         string
	userEmail   string
	accountType Type
}

// NewAPIKey creates an APIKey record.
func NewAPIKey(key, userEmail string, accountType Type) APIKey {
	return APIKey{
		key:         key,
		userEmail:   userEmail,
		accountType: accountType,
	}
}

// GenerateAPIKey creates a new APIKey with a cryptographically random key.
func GenerateAPIKey(userEmail string, accountType Type) (APIKey, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return APIKey{}, fmt.Errorf("generate api key: %w", err)
	}
	return NewAPIKey(hex.EncodeToString(b), userEmail, accountType), nil
}

// Key returns the opaque key string.
func (k APIKey) Key() string { return k.key }

// UserEmail returns the owning account's email.
func (k APIKey) UserEmail() string { return k.userEmail }

// AccountType returns the owning account's tier.
func (k APIKey) AccountType() Type { return k.accountType }

// Principal is an authenticated caller: the account email plus its tier.
type Principal struct {
	email       string
	accountType Type
}

// NewPrincipal creates a Principal.
func NewPrincipal(email string, accountType Type) Principal {
	return Principal{email: email, accountType: accountType}
}

// Email returns the principal's email.
func (p Principal) Email() string { return p.email }

// AccountType returns the principal's tier.
func (p Principal) AccountType() Type { return p.accountType }
