// Package account holds the user account and API key entities.
package account

import (
	"strings"
	"time"
)

// Type classifies an account's rate-limit tier.
type Type string

// Type values.
const (
	TypeFree    Type = "FREE"
	TypePremium Type = "PREMIUM"
)

// premiumDomain promotes matching registrations to the PREMIUM tier.
// Demo promotion rule carried over from the deployed service.
const premiumDomain = "@gmail.com"

// TierForEmail determines the account tier at registration time.
// The tier is fixed once assigned and never changes afterwards.
func TierForEmail(email string) Type {
	if strings.HasSuffix(strings.ToLower(email), premiumDomain) {
		return TypePremium
	}
	return TypeFree
}

// ParseType normalizes a stored tier string, defaulting to FREE.
func ParseType(s string) Type {
	if Type(strings.ToUpper(s)) == TypePremium {
		return TypePremium
	}
	return TypeFree
}

// Account represents a registered user.
type Account struct {
	email        string
	passwordHash string
	accountType  Type
	createdAt    time.Time
}

// NewAccount creates a new Account.
func NewAccount(email, passwordHash string, accountType Type, createdAt time.Time) Account {
	return Account{
		email:        email,
		passwordHash: passwordHash,
		accountType:  accountType,
		createdAt:    createdAt,
	}
}

// Email returns the account email.
func (a Account) Email() string { return a.email }

// PasswordHash returns the bcrypt password hash.
func (a Account) PasswordHash() string { return a.passwordHash }

// AccountType returns the account tier.
func (a Account) AccountType() Type { return a.accountType }

// CreatedAt returns the registration time.
func (a Account) CreatedAt() time.Time { return a.createdAt }
