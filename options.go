package simdex

import (
	"errors"

	"github.com/simdex/simdex/application/service"
	"github.com/simdex/simdex/domain/account"
	"github.com/simdex/simdex/domain/similarity"
	"github.com/simdex/simdex/internal/config"
	"github.com/simdex/simdex/internal/log"
)

// ErrNotConfigured indicates a required backing store has neither a
// connection URL nor an injected implementation.
var ErrNotConfigured = errors.New("simdex: not configured")

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	appConfig config.AppConfig
	logger    *log.Logger

	// Injected implementations, used in place of real connections.
	accountStore    account.AccountStore
	credentialStore account.CredentialStore
	resultCache     similarity.ResultCache
	limiter         service.RateLimiter
	predictor       similarity.Predictor
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		appConfig: config.NewAppConfig(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig sets the application configuration.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.appConfig = cfg
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *log.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithAccountStore injects an account store, bypassing MongoDB.
func WithAccountStore(s account.AccountStore) Option {
	return func(c *clientConfig) {
		c.accountStore = s
	}
}

// WithCredentialStore injects a credential store, bypassing PostgreSQL.
func WithCredentialStore(s account.CredentialStore) Option {
	return func(c *clientConfig) {
		c.credentialStore = s
	}
}

// WithResultCache injects a result cache, bypassing Redis.
func WithResultCache(rc similarity.ResultCache) Option {
	return func(c *clientConfig) {
		c.resultCache = rc
	}
}

// WithRateLimiter injects a rate limiter, bypassing Redis.
func WithRateLimiter(l service.RateLimiter) Option {
	return func(c *clientConfig) {
		c.limiter = l
	}
}

// WithPredictor injects a predictor, bypassing the on-disk model.
func WithPredictor(p similarity.Predictor) Option {
	return func(c *clientConfig) {
		c.predictor = p
	}
}
