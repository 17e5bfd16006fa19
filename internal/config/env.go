package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/simdex/simdex/internal/log"
)

// EnvConfig holds all environment-based configuration.
// Variable names match the deployment environment with no prefix.
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8000)
	Port int `envconfig:"PORT" default:"8000"`

	// DBURL is a full PostgreSQL connection URL.
	// When set it overrides the discrete POSTGRES_* variables.
	// Env: DB_URL
	DBURL string `envconfig:"DB_URL"`

	// PostgresHost is the PostgreSQL host.
	// Env: POSTGRES_HOST (default: localhost)
	PostgresHost string `envconfig:"POSTGRES_HOST" default:"localhost"`

	// PostgresPort is the PostgreSQL port.
	// Env: POSTGRES_PORT (default: 5432)
	PostgresPort int `envconfig:"POSTGRES_PORT" default:"5432"`

	// PostgresDB is the PostgreSQL database name.
	// Env: POSTGRES_DB (default: api_db)
	PostgresDB string `envconfig:"POSTGRES_DB" default:"api_db"`

	// PostgresUser is the PostgreSQL user.
	// Env: POSTGRES_USER (default: api_user)
	PostgresUser string `envconfig:"POSTGRES_USER" default:"api_user"`

	// PostgresPassword is the PostgreSQL password.
	// Env: POSTGRES_PASSWORD (default: api_password)
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"api_password"`

	// MongoURI is the MongoDB connection URI.
	// Env: MONGO_URI (default: mongodb://localhost:27017)
	MongoURI string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`

	// MongoDB is the MongoDB database name.
	// Env: MONGO_DB (default: api_user_db)
	MongoDB string `envconfig:"MONGO_DB" default:"api_user_db"`

	// RedisURI is the Redis connection URI.
	// When set it overrides REDIS_HOST and REDIS_PORT.
	// Env: REDIS_URI
	RedisURI string `envconfig:"REDIS_URI"`

	// RedisHost is the Redis host.
	// Env: REDIS_HOST (default: localhost)
	RedisHost string `envconfig:"REDIS_HOST" default:"localhost"`

	// RedisPort is the Redis port.
	// Env: REDIS_PORT (default: 6379)
	RedisPort int `envconfig:"REDIS_PORT" default:"6379"`

	// SecretKey is the JWT signing secret. Required at startup.
	// Env: SECRET_KEY
	SecretKey string `envconfig:"SECRET_KEY"`

	// TokenTTL is the JWT lifetime in seconds.
	// Env: TOKEN_TTL (default: 3600)
	TokenTTL float64 `envconfig:"TOKEN_TTL" default:"3600"`

	// CacheTTL is the result cache entry lifetime in seconds.
	// Env: CACHE_TTL (default: 3600)
	CacheTTL float64 `envconfig:"CACHE_TTL" default:"3600"`

	// ModelDir is the directory holding the embedding model files.
	// Env: MODEL_DIR
	ModelDir string `envconfig:"MODEL_DIR"`

	// RelationIndex is the relation index used for similarity scoring.
	// Env: RELATION_INDEX (default: 5)
	RelationIndex int `envconfig:"RELATION_INDEX" default:"5"`

	// TopK is the number of neighbours returned per query.
	// Env: TOP_K (default: 10)
	TopK int `envconfig:"TOP_K" default:"10"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// RateLimitsFile is an optional YAML file overriding per-tier quotas.
	// Env: RATE_LIMITS_FILE
	RateLimitsFile string `envconfig:"RATE_LIMITS_FILE"`

	// SingleFlight de-duplicates concurrent identical similarity lookups.
	// Env: SINGLE_FLIGHT (default: false)
	SingleFlight bool `envconfig:"SINGLE_FLIGHT" default:"false"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() (AppConfig, error) {
	opts := []AppConfigOption{
		WithHost(e.Host),
		WithPort(e.Port),
		WithMongoURI(e.MongoURI),
		WithMongoDB(e.MongoDB),
		WithSecretKey(e.SecretKey),
		WithTokenTTL(time.Duration(e.TokenTTL * float64(time.Second))),
		WithCacheTTL(time.Duration(e.CacheTTL * float64(time.Second))),
		WithModelDir(e.ModelDir),
		WithRelationIndex(e.RelationIndex),
		WithTopK(e.TopK),
		WithLogLevel(e.LogLevel),
		WithLogFormat(parseLogFormat(e.LogFormat)),
		WithSingleFlight(e.SingleFlight),
	}

	if e.DBURL != "" {
		opts = append(opts, WithDBURL(e.DBURL))
	} else {
		opts = append(opts, WithDBURL(PostgresURL(
			e.PostgresHost, e.PostgresPort, e.PostgresDB, e.PostgresUser, e.PostgresPassword,
		)))
	}

	if e.RedisURI != "" {
		opts = append(opts, WithRedisURI(e.RedisURI))
	} else {
		opts = append(opts, WithRedisURI(RedisURL(e.RedisHost, e.RedisPort)))
	}

	if e.RateLimitsFile != "" {
		limits, err := LoadTierLimits(e.RateLimitsFile)
		if err != nil {
			return AppConfig{}, err
		}
		opts = append(opts, WithRateLimits(limits))
	}

	return NewAppConfigWithOptions(opts...), nil
}

func parseLogFormat(s string) log.Format {
	switch strings.ToLower(s) {
	case "json":
		return log.FormatJSON
	default:
		return log.FormatPretty
	}
}
