// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/simdex/simdex/internal/log"
)

// Default configuration values.
const (
	DefaultHost          = "0.0.0.0"
	DefaultPort          = 8000
	DefaultLogLevel      = "INFO"
	DefaultMongoURI      = "mongodb://localhost:27017"
	DefaultMongoDB       = "api_user_db"
	DefaultRedisURI      = "redis://localhost:6379"
	DefaultTokenTTL      = time.Hour
	DefaultCacheTTL      = time.Hour
	DefaultRelationIndex = 5
	DefaultTopK          = 10
)

// AppConfig holds the resolved application configuration.
type AppConfig struct {
	host          string
	port          int
	dbURL         string
	mongoURI      string
	mongoDB       string
	redisURI      string
	secretKey     string
	tokenTTL      time.Duration
	cacheTTL      time.Duration
	modelDir      string
	relationIndex int
	topK          int
	logLevel      string
	logFormat     log.Format
	rateLimits    TierLimits
	singleFlight  bool
}

// NewAppConfig creates an AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:          DefaultHost,
		port:          DefaultPort,
		mongoURI:      DefaultMongoURI,
		mongoDB:       DefaultMongoDB,
		redisURI:      DefaultRedisURI,
		tokenTTL:      DefaultTokenTTL,
		cacheTTL:      DefaultCacheTTL,
		relationIndex: DefaultRelationIndex,
		topK:          DefaultTopK,
		logLevel:      DefaultLogLevel,
		logFormat:     log.FormatPretty,
		rateLimits:    DefaultTierLimits(),
	}
}

// NewAppConfigWithOptions creates an AppConfig with functional options applied.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	cfg := NewAppConfig()
	return cfg.Apply(opts...)
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the host:port listen address.
func (c AppConfig) Addr() string { return fmt.Sprintf("%s:%d", c.host, c.port) }

// DBURL returns the PostgreSQL connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// MongoURI returns the MongoDB connection URI.
func (c AppConfig) MongoURI() string { return c.mongoURI }

// MongoDB returns the MongoDB database name.
func (c AppConfig) MongoDB() string { return c.mongoDB }

// RedisURI returns the Redis connection URI.
func (c AppConfig) RedisURI() string { return c.redisURI }

// SecretKey returns the JWT signing secret.
func (c AppConfig) SecretKey() string { return c.secretKey }

// TokenTTL returns the JWT lifetime.
func (c AppConfig) TokenTTL() time.Duration { return c.tokenTTL }

// CacheTTL returns the result cache entry lifetime.
func (c AppConfig) CacheTTL() time.Duration { return c.cacheTTL }

// ModelDir returns the directory holding the embedding model files.
func (c AppConfig) ModelDir() string { return c.modelDir }

// RelationIndex returns the relation index used for similarity scoring.
func (c AppConfig) RelationIndex() int { return c.relationIndex }

// TopK returns the number of neighbours returned per query.
func (c AppConfig) TopK() int { return c.topK }

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() log.Format { return c.logFormat }

// RateLimits returns the per-tier request quotas.
func (c AppConfig) RateLimits() TierLimits { return c.rateLimits }

// SingleFlight reports whether concurrent identical lookups are de-duplicated.
func (c AppConfig) SingleFlight() bool { return c.singleFlight }

// Validate checks that required configuration is present.
func (c AppConfig) Validate() error {
	if c.secretKey == "" {
		return fmt.Errorf("SECRET_KEY is required for token signing")
	}
	if c.dbURL == "" {
		return fmt.Errorf("PostgreSQL connection is not configured")
	}
	if c.modelDir == "" {
		return fmt.Errorf("MODEL_DIR is required to load the embedding model")
	}
	return nil
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDBURL sets the PostgreSQL connection URL.
func WithDBURL(u string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = u }
}

// WithMongoURI sets the MongoDB connection URI.
func WithMongoURI(uri string) AppConfigOption {
	return func(c *AppConfig) { c.mongoURI = uri }
}

// WithMongoDB sets the MongoDB database name.
func WithMongoDB(name string) AppConfigOption {
	return func(c *AppConfig) { c.mongoDB = name }
}

// WithRedisURI sets the Redis connection URI.
func WithRedisURI(uri string) AppConfigOption {
	return func(c *AppConfig) { c.redisURI = uri }
}

// WithSecretKey sets the JWT signing secret.
func WithSecretKey(key string) AppConfigOption {
	return func(c *AppConfig) { c.secretKey = key }
}

// WithTokenTTL sets the JWT lifetime.
func WithTokenTTL(d time.Duration) AppConfigOption {
	return func(c *AppConfig) { c.tokenTTL = d }
}

// WithCacheTTL sets the result cache entry lifetime.
func WithCacheTTL(d time.Duration) AppConfigOption {
	return func(c *AppConfig) { c.cacheTTL = d }
}

// WithModelDir sets the embedding model directory.
func WithModelDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.modelDir = dir }
}

// WithRelationIndex sets the relation index used for scoring.
func WithRelationIndex(idx int) AppConfigOption {
	return func(c *AppConfig) { c.relationIndex = idx }
}

// WithTopK sets the number of neighbours returned per query.
func WithTopK(k int) AppConfigOption {
	return func(c *AppConfig) { c.topK = k }
}

// WithLogLevel sets the log verbosity level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log output format.
func WithLogFormat(format log.Format) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithRateLimits sets the per-tier request quotas.
func WithRateLimits(limits TierLimits) AppConfigOption {
	return func(c *AppConfig) { c.rateLimits = limits }
}

// WithSingleFlight enables de-duplication of concurrent identical lookups.
func WithSingleFlight(enabled bool) AppConfigOption {
	return func(c *AppConfig) { c.singleFlight = enabled }
}

// PostgresURL builds a postgres:// connection URL from discrete parts.
func PostgresURL(host string, port int, dbname, user, password string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + dbname,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()
	return u.String()
}

// RedisURL builds a redis:// connection URL from discrete parts.
func RedisURL(host string, port int) string {
	return fmt.Sprintf("redis://%s:%d", host, port)
}
