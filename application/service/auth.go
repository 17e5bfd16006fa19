// Package service provides application layer services that orchestrate domain operations.
package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/simdex/simdex/domain/account"
	"github.com/simdex/simdex/internal/auth"
	"github.com/simdex/simdex/internal/log"
)

// Registration is the outcome of a successful account registration.
type Registration struct {
	apiKey      string
	accountType account.Type
}

// APIKey returns the newly issued key.
func (r Registration) APIKey() string { return r.apiKey }

// AccountType returns the assigned tier.
func (r Registration) AccountType() account.Type { return r.accountType }

// Auth orchestrates registration, login, and request authentication.
type Auth struct {
	accounts    account.AccountStore
	credentials account.CredentialStore
	tokens      *auth.JWTManager
	logger      *log.Logger
}

// NewAuth creates a new Auth service.
func NewAuth(
	accounts account.AccountStore,
	credentials account.CredentialStore,
	tokens *auth.JWTManager,
	logger *log.Logger,
) *Auth {
	if logger == nil {
		logger = log.NewLogger(log.FormatPretty, "info")
	}
	return &Auth{
		accounts:    accounts,
		credentials: credentials,
		tokens:      tokens,
		logger:      logger,
	}
}

// Register creates an account, assigns its tier from the email domain, and
// issues an API key. Returns account.ErrAccountExists for duplicate emails.
func (s *Auth) Register(ctx context.Context, email, password string) (Registration, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return Registration{}, err
	}
	if password == "" {
		return Registration{}, fmt.Errorf("%w: password must not be empty", ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return Registration{}, err
	}

	tier := account.TierForEmail(email)
	acct := account.NewAccount(email, hash, tier, time.Now().UTC())
	if err := s.accounts.Create(ctx, acct); err != nil {
		return Registration{}, err
	}

	key, err := account.GenerateAPIKey(email, tier)
	if err != nil {
		return Registration{}, err
	}
	if err := s.credentials.Insert(ctx, key); err != nil {
		return Registration{}, err
	}

	s.logger.WithContext(ctx).Info("account registered", "email", email, "tier", string(tier))
	return Registration{apiKey: key.Key(), accountType: tier}, nil
}

// Login verifies the email/password pair and returns a signed access token.
func (s *Auth) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the account exists.
		return "", ErrInvalidCredentials
	}
	if !auth.VerifyPassword(acct.PasswordHash(), password) {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(acct.Email())
	if err != nil {
		return "", err
	}

	s.logger.WithContext(ctx).Info("login succeeded", "email", acct.Email())
	return token, nil
}

// Authenticate resolves the caller from a bearer token or an API key.
// A bearer token, when present, is checked first; an API key is the fallback.
func (s *Auth) Authenticate(ctx context.Context, bearerToken, apiKey string) (account.Principal, error) {
	if bearerToken != "" {
		email, err := s.tokens.ValidateToken(bearerToken)
		if err != nil {
			return account.Principal{}, err
		}
		acct, err := s.accounts.FindByEmail(ctx, email)
		if err != nil {
			return account.Principal{}, auth.ErrTokenInvalid
		}
		return account.NewPrincipal(acct.Email(), acct.AccountType()), nil
	}

	if apiKey != "" {
		cred, err := s.credentials.FindByKey(ctx, apiKey)
		if err != nil {
			return account.Principal{}, ErrUnknownAPIKey
		}
		return account.NewPrincipal(cred.UserEmail(), cred.AccountType()), nil
	}

	return account.Principal{}, ErrNoCredentials
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email must not be empty", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: malformed email address", ErrValidation)
	}
	return nil
}
