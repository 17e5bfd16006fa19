package simdex

import (
	"context"
	"errors"
	"testing"

	"github.com/simdex/simdex/domain/account"
	"github.com/simdex/simdex/domain/similarity"
	"github.com/simdex/simdex/internal/config"
)

type memAccountStore struct {
	accounts map[string]account.Account
}

func (m *memAccountStore) Create(_ context.Context, acct account.Account) error {
	if _, ok := m.accounts[acct.Email()]; ok {
		return account.ErrAccountExists
	}
	m.accounts[acct.Email()] = acct
	return nil
}

func (m *memAccountStore) FindByEmail(_ context.Context, email string) (account.Account, error) {
	if acct, ok := m.accounts[email]; ok {
		return acct, nil
	}
	return account.Account{}, account.ErrAccountNotFound
}

type memCredentialStore struct {
	keys map[string]account.APIKey
}

func (m *memCredentialStore) Insert(_ context.Context, key account.APIKey) error {
	m.keys[key.Key()] = key
	return nil
}

func (m *memCredentialStore) FindByKey(_ context.Context, key string) (account.APIKey, error) {
	if k, ok := m.keys[key]; ok {
		return k, nil
	}
	return account.APIKey{}, account.ErrKeyNotFound
}

type memCache struct {
	entries map[string]similarity.Prediction
}

func (m *memCache) Get(_ context.Context, key string) (similarity.Prediction, error) {
	if pred, ok := m.entries[key]; ok {
		return pred, nil
	}
	return nil, similarity.ErrCacheMiss
}

func (m *memCache) Put(_ context.Context, key string, pred similarity.Prediction) error {
	m.entries[key] = pred
	return nil
}

type memLimiter struct {
	counts map[string]int
}

func (m *memLimiter) Allow(_ context.Context, callerID string, limit int) (bool, error) {
	m.counts[callerID]++
	return m.counts[callerID] <= limit, nil
}

type stubPredictor struct{}

func (stubPredictor) SimilarEntities(_ context.Context, _ similarity.EntityRef, _ int) (similarity.Prediction, error) {
	return similarity.Prediction{
		similarity.NewNeighbor("paris", -0.1),
		similarity.NewNeighbor("london", -0.4),
	}, nil
}

func newTestClient(t *testing.T) *Client {
	t.Helper()

	cfg := config.NewAppConfig().Apply(
		config.WithSecretKey("test-secret-test-secret-32chars!"),
	)
	client, err := New(context.Background(),
		WithConfig(cfg),
		WithAccountStore(&memAccountStore{accounts: map[string]account.Account{}}),
		WithCredentialStore(&memCredentialStore{keys: map[string]account.APIKey{}}),
		WithResultCache(&memCache{entries: map[string]similarity.Prediction{}}),
		WithRateLimiter(&memLimiter{counts: map[string]int{}}),
		WithPredictor(stubPredictor{}),
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_RegisterLoginQuery(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	reg, err := client.Auth.Register(ctx, "alice@gmail.com", "pw123")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if reg.AccountType() != account.TypePremium {
		t.Errorf("tier = %s, want PREMIUM", reg.AccountType())
	}

	token, err := client.Auth.Login(ctx, "alice@gmail.com", "pw123")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	caller, err := client.Auth.Authenticate(ctx, token, "")
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}

	pred, cached, err := client.Similarity.Query(ctx, caller, similarity.NewLabelRef("france"))
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if cached {
		t.Error("first query reported a cache hit")
	}
	if len(pred) != 2 || pred[0].Entity() != "paris" {
		t.Errorf("prediction = %+v", pred)
	}

	if _, cached, err := client.Similarity.Query(ctx, caller, similarity.NewLabelRef("france")); err != nil {
		t.Fatal(err)
	} else if !cached {
		t.Error("second query missed the cache")
	}
}

func TestClient_APIKeyPath(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	reg, err := client.Auth.Register(ctx, "bob@example.org", "pw123")
	if err != nil {
		t.Fatal(err)
	}

	caller, err := client.Auth.Authenticate(ctx, "", reg.APIKey())
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if caller.AccountType() != account.TypeFree {
		t.Errorf("tier = %s, want FREE", caller.AccountType())
	}
}

func TestNew_RequiresDatabaseOrStore(t *testing.T) {
	_, err := New(context.Background(),
		WithConfig(config.NewAppConfig()),
		WithAccountStore(&memAccountStore{accounts: map[string]account.Account{}}),
		WithResultCache(&memCache{entries: map[string]similarity.Prediction{}}),
		WithRateLimiter(&memLimiter{counts: map[string]int{}}),
		WithPredictor(stubPredictor{}),
	)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}
