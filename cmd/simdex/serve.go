package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/simdex/simdex"
	"github.com/simdex/simdex/infrastructure/api"
	"github.com/simdex/simdex/internal/config"
	"github.com/simdex/simdex/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST               Server host to bind to (default: 0.0.0.0)
  PORT               Server port to listen on (default: 8000)
  DB_URL             PostgreSQL URL for the API key store
  POSTGRES_HOST      Discrete PostgreSQL parts, used when DB_URL is unset
  POSTGRES_PORT        (also _DB, _USER, _PASSWORD)
  MONGO_URI          MongoDB URI for the account store (default: mongodb://localhost:27017)
  MONGO_DB           MongoDB database name (default: api_user_db)
  REDIS_URI          Redis URI for caching and rate limiting (default: redis://localhost:6379)
  SECRET_KEY         Token signing secret (required)
  TOKEN_TTL          Token lifetime in seconds (default: 3600)
  CACHE_TTL          Result cache lifetime in seconds (default: 3600)
  MODEL_DIR          Directory holding dataset.tsv[.gz] and transh.bin (required)
  RELATION_INDEX     Relation used for similarity scoring (default: 5)
  TOP_K              Neighbours returned per query (default: 10)
  RATE_LIMITS_FILE   YAML file overriding per-tier quotas
  SINGLE_FLIGHT      De-duplicate concurrent identical lookups (default: false)
  LOG_LEVEL          Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT         Log format: pretty, json (default: pretty)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8000)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.NewLogger(cfg.LogFormat(), cfg.LogLevel())
	logger.SetDefault()
	logger.Info("starting simdex",
		"version", version,
		"addr", cfg.Addr(),
		"model_dir", cfg.ModelDir(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := simdex.New(ctx,
		simdex.WithConfig(cfg),
		simdex.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create simdex client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close simdex client", "error", err)
		}
	}()

	apiServer := api.NewAPIServer(client)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutting down server")
		cancel()
		if err := apiServer.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := apiServer.ListenAndServe(cfg.Addr()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
