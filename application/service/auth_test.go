package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/simdex/simdex/domain/account"
	"github.com/simdex/simdex/internal/auth"
)

// fakeAccountStore implements account.AccountStore for testing.
type fakeAccountStore struct {
	accounts map[string]account.Account
	err      error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: map[string]account.Account{}}
}

func (f *fakeAccountStore) Create(_ context.Context, acct account.Account) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.accounts[acct.Email()]; ok {
		return account.ErrAccountExists
	}
	f.accounts[acct.Email()] = acct
	return nil
}

func (f *fakeAccountStore) FindByEmail(_ context.Context, email string) (account.Account, error) {
	if acct, ok := f.accounts[email]; ok {
		return acct, nil
	}
	return account.Account{}, account.ErrAccountNotFound
}

// fakeCredentialStore implements account.CredentialStore for testing.
type fakeCredentialStore struct {
	keys map[string]account.APIKey
	err  error
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{keys: map[string]account.APIKey{}}
}

func (f *fakeCredentialStore) Insert(_ context.Context, key account.APIKey) error {
	if f.err != nil {
		return f.err
	}
	f.keys[key.Key()] = key
	return nil
}

func (f *fakeCredentialStore) FindByKey(_ context.Context, key string) (account.APIKey, error) {
	if k, ok := f.keys[key]; ok {
		return k, nil
	}
	return account.APIKey{}, account.ErrKeyNotFound
}

func newTestAuth(accounts *fakeAccountStore, credentials *fakeCredentialStore) *Auth {
	return NewAuth(accounts, credentials, auth.NewJWTManager("test-secret-test-secret-32chars!", time.Hour), nil)
}

func TestAuth_Register_IssuesKeyAndTier(t *testing.T) {
	accounts := newFakeAccountStore()
	credentials := newFakeCredentialStore()
	svc := newTestAuth(accounts, credentials)

	reg, err := svc.Register(context.Background(), "alice@gmail.com", "pw123")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if reg.AccountType() != account.TypePremium {
		t.Errorf("tier = %s, want PREMIUM", reg.AccountType())
	}
	if len(reg.APIKey()) != 32 {
		t.Errorf("api key length = %d, want 32", len(reg.APIKey()))
	}
	if _, ok := accounts.accounts["alice@gmail.com"]; !ok {
		t.Error("account not persisted")
	}
	if _, ok := credentials.keys[reg.APIKey()]; !ok {
		t.Error("api key not persisted")
	}
}

func TestAuth_Register_FreeTier(t *testing.T) {
	svc := newTestAuth(newFakeAccountStore(), newFakeCredentialStore())

	reg, err := svc.Register(context.Background(), "bob@example.org", "pw123")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if reg.AccountType() != account.TypeFree {
		t.Errorf("tier = %s, want FREE", reg.AccountType())
	}
}

func TestAuth_Register_Duplicate(t *testing.T) {
	svc := newTestAuth(newFakeAccountStore(), newFakeCredentialStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@gmail.com", "pw123"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Register(ctx, "alice@gmail.com", "other")
	if !errors.Is(err, account.ErrAccountExists) {
		t.Errorf("error = %v, want ErrAccountExists", err)
	}
}

func TestAuth_Register_Validation(t *testing.T) {
	svc := newTestAuth(newFakeAccountStore(), newFakeCredentialStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "pw"); !errors.Is(err, ErrValidation) {
		t.Errorf("empty email: error = %v, want ErrValidation", err)
	}
	if _, err := svc.Register(ctx, "not-an-email", "pw"); !errors.Is(err, ErrValidation) {
		t.Errorf("malformed email: error = %v, want ErrValidation", err)
	}
	if _, err := svc.Register(ctx, "carol@example.org", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty password: error = %v, want ErrValidation", err)
	}
}

func TestAuth_Login_RoundTrip(t *testing.T) {
	accounts := newFakeAccountStore()
	svc := newTestAuth(accounts, newFakeCredentialStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@gmail.com", "pw123"); err != nil {
		t.Fatal(err)
	}

	token, err := svc.Login(ctx, "alice@gmail.com", "pw123")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	principal, err := svc.Authenticate(ctx, token, "")
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if principal.Email() != "alice@gmail.com" {
		t.Errorf("principal email = %q", principal.Email())
	}
	if principal.AccountType() != account.TypePremium {
		t.Errorf("principal tier = %s, want PREMIUM", principal.AccountType())
	}
}

func TestAuth_Login_WrongPassword(t *testing.T) {
	svc := newTestAuth(newFakeAccountStore(), newFakeCredentialStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@gmail.com", "pw123"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, "alice@gmail.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.org", "pw123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown account: error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuth_Authenticate_APIKey(t *testing.T) {
	svc := newTestAuth(newFakeAccountStore(), newFakeCredentialStore())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "bob@example.org", "pw123")
	if err != nil {
		t.Fatal(err)
	}

	principal, err := svc.Authenticate(ctx, "", reg.APIKey())
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if principal.Email() != "bob@example.org" || principal.AccountType() != account.TypeFree {
		t.Errorf("principal = %q/%s", principal.Email(), principal.AccountType())
	}
}

func TestAuth_Authenticate_Failures(t *testing.T) {
	svc := newTestAuth(newFakeAccountStore(), newFakeCredentialStore())
	ctx := context.Background()

	if _, err := svc.Authenticate(ctx, "", ""); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("no credentials: error = %v, want ErrNoCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "", "deadbeef"); !errors.Is(err, ErrUnknownAPIKey) {
		t.Errorf("unknown key: error = %v, want ErrUnknownAPIKey", err)
	}
	if _, err := svc.Authenticate(ctx, "not.a.token", ""); !errors.Is(err, auth.ErrTokenInvalid) {
		t.Errorf("bad token: error = %v, want ErrTokenInvalid", err)
	}
}
