// Package cmd implements the chatbot CLI commands.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ronak026/chatbot/internal/config"
	"github.com/ronak026/chatbot/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "A learning chatbot that remembers the answers it gives",
	Long: `chatbot resolves questions through a fixed pipeline: intent rules,
exact lookup against learned knowledge, TF-IDF similarity matching, and
finally an external generator whose answers are written back so the next
caller gets them from the cache.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is the single entry point called
// from main.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads a .env file if present, then configuration, and
// installs the configured logger as the process default.
func loadConfig() (*config.Config, *slog.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validating config: %w", err)
	}

	logger := log.New(log.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	slog.SetDefault(logger)
	return cfg, logger, nil
}
