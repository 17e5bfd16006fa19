// Package simdex provides a knowledge-graph entity similarity service.
//
// Simdex serves nearest-neighbour queries over hyperplane-projected entity
// embeddings, with account registration, token and API-key authentication,
// per-tier rate limiting, and Redis-backed result caching.
//
// Basic usage:
//
//	client, err := simdex.New(ctx,
//	    simdex.WithConfig(cfg),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	pred, cached, err := client.Similarity.Query(ctx, caller, similarity.NewLabelRef("paris"))
package simdex

import (
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/simdex/simdex/application/service"
	"github.com/simdex/simdex/domain/account"
	"github.com/simdex/simdex/domain/similarity"
	"github.com/simdex/simdex/infrastructure/cache"
	"github.com/simdex/simdex/infrastructure/persistence"
	"github.com/simdex/simdex/infrastructure/provider"
	"github.com/simdex/simdex/internal/auth"
	"github.com/simdex/simdex/internal/config"
	"github.com/simdex/simdex/internal/database"
	"github.com/simdex/simdex/internal/log"
)

// Version is the service version reported by the home endpoint.
const Version = "0.1.0"

// Client is the main entry point for the simdex library.
//
// Access the services via struct fields:
//
//	client.Auth.Register(ctx, email, password)
//	client.Similarity.Query(ctx, caller, ref)
type Client struct {
	Auth       *service.Auth
	Similarity *service.Similarity

	cfg     config.AppConfig
	logger  *log.Logger
	closers []io.Closer
}

// New creates a new Client with the given options. Backing stores that are
// not injected are connected from the configuration.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = log.NewLogger(cfg.appConfig.LogFormat(), cfg.appConfig.LogLevel())
	}

	client := &Client{
		cfg:    cfg.appConfig,
		logger: logger,
	}

	credentials, err := client.setupCredentials(ctx, cfg)
	if err != nil {
		client.closeAll()
		return nil, err
	}
	accounts, err := client.setupAccounts(ctx, cfg)
	if err != nil {
		client.closeAll()
		return nil, err
	}
	resultCache, limiter, err := client.setupRedis(ctx, cfg)
	if err != nil {
		client.closeAll()
		return nil, err
	}
	predictor, err := client.setupPredictor(cfg)
	if err != nil {
		client.closeAll()
		return nil, err
	}

	tokens := auth.NewJWTManager(cfg.appConfig.SecretKey(), cfg.appConfig.TokenTTL())
	client.Auth = service.NewAuth(accounts, credentials, tokens, logger)

	simOpts := []service.SimilarityOption{service.WithTopK(cfg.appConfig.TopK())}
	if cfg.appConfig.SingleFlight() {
		simOpts = append(simOpts, service.WithSingleFlight())
	}
	client.Similarity = service.NewSimilarity(
		predictor, resultCache, limiter,
		cfg.appConfig.RateLimits(), logger, simOpts...,
	)

	return client, nil
}

func (c *Client) setupCredentials(ctx context.Context, cfg *clientConfig) (account.CredentialStore, error) {
	if cfg.credentialStore != nil {
		return cfg.credentialStore, nil
	}

	if c.cfg.DBURL() == "" {
		return nil, fmt.Errorf("credential store: %w", ErrNotConfigured)
	}
	db, err := database.NewDatabase(ctx, c.cfg.DBURL())
	if err != nil {
		return nil, fmt.Errorf("connect credential database: %w", err)
	}
	c.closers = append(c.closers, closerFunc(db.Close))

	if err := persistence.AutoMigrate(ctx, db); err != nil {
		return nil, fmt.Errorf("migrate credential database: %w", err)
	}
	return persistence.NewCredentialStore(db), nil
}

func (c *Client) setupAccounts(ctx context.Context, cfg *clientConfig) (account.AccountStore, error) {
	if cfg.accountStore != nil {
		return cfg.accountStore, nil
	}

	mongoClient, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(c.cfg.MongoURI()))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	c.closers = append(c.closers, closerFunc(func() error {
		return mongoClient.Disconnect(context.Background())
	}))

	if err := mongoClient.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return persistence.NewAccountStore(ctx, mongoClient.Database(c.cfg.MongoDB()))
}

func (c *Client) setupRedis(ctx context.Context, cfg *clientConfig) (similarity.ResultCache, service.RateLimiter, error) {
	if cfg.resultCache != nil && cfg.limiter != nil {
		return cfg.resultCache, cfg.limiter, nil
	}

	redisClient, err := cache.NewRedisClient(ctx, c.cfg.RedisURI())
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	c.closers = append(c.closers, redisClient)

	resultCache := cfg.resultCache
	if resultCache == nil {
		resultCache = cache.NewResultCache(redisClient, c.cfg.CacheTTL())
	}
	limiter := cfg.limiter
	if limiter == nil {
		limiter = cache.NewRateLimiter(redisClient)
	}
	return resultCache, limiter, nil
}

func (c *Client) setupPredictor(cfg *clientConfig) (similarity.Predictor, error) {
	if cfg.predictor != nil {
		return cfg.predictor, nil
	}

	if c.cfg.ModelDir() == "" {
		return nil, fmt.Errorf("embedding model: %w", ErrNotConfigured)
	}
	return provider.LoadTransH(c.cfg.ModelDir(), c.cfg.RelationIndex(), c.logger)
}

// Logger returns the client's logger.
func (c *Client) Logger() *log.Logger { return c.logger }

// Config returns the resolved configuration.
func (c *Client) Config() config.AppConfig { return c.cfg }

// Close releases the client's connections.
func (c *Client) Close() error {
	return c.closeAll()
}

func (c *Client) closeAll() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

// closerFunc adapts a func() error to io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }
