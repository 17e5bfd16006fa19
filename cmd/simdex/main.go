// Package main is the entry point for the simdex CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simdex/simdex/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simdex",
		Short: "Simdex entity similarity server",
		Long:  `Simdex serves nearest-neighbour queries over knowledge-graph entity embeddings, with account management, authentication, rate limiting, and result caching.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from a .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
