package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ronak026/chatbot/internal/app"
)

var askCallerID string

var askCmd = &cobra.Command{
	Use:   "ask [message...]",
	Short: "Ask the chatbot a single question",
	Long: `Ask resolves one message through the full pipeline and prints the
reply. The resolution stage is printed to help understand where the
answer came from (intent, exact_match, similarity, generated, ...).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().StringVar(&askCallerID, "caller", "cli", "caller identity used for quota and history")
	rootCmd.AddCommand(askCmd)
}

func runAsk(message string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	result, err := a.Resolver.Resolve(ctx, message, askCallerID)
	if err != nil {
		return fmt.Errorf("resolving message: %w", err)
	}

	if _, err := a.ChatLog.Append(ctx, askCallerID, message, result.Answer, result.Stage.String()); err != nil {
		logger.Warn("failed to record exchange", "error", err)
	}

	fmt.Printf("%s\n[stage: %s]\n", result.Answer, result.Stage)
	return nil
}
