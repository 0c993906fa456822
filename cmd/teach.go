package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ronak026/chatbot/internal/app"
	"github.com/ronak026/chatbot/internal/knowledge"
	"github.com/ronak026/chatbot/internal/textnorm"
)

var teachVerifyOnly bool

var teachCmd = &cobra.Command{
	Use:   "teach <question> [answer]",
	Short: "Teach or correct an answer as a trusted operator",
	Long: `Teach writes a curated answer for a question and marks the entry as
verified. Existing entries are overwritten; unknown questions are added.
With --verify the stored answer is kept and only the verified flag is
set.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if teachVerifyOnly {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if teachVerifyOnly {
			return runTeach(args[0], "")
		}
		return runTeach(args[0], args[1])
	},
}

func init() {
	teachCmd.Flags().BoolVar(&teachVerifyOnly, "verify", false, "only mark the existing entry as verified")
	rootCmd.AddCommand(teachCmd)
}

func runTeach(question, answer string) error {
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

	key := textnorm.Normalize(question)
	if key == "" {
		return errors.New("question normalizes to nothing teachable")
	}

	if teachVerifyOnly {
		if err := a.Knowledge.MarkVerified(ctx, key); err != nil {
			return fmt.Errorf("marking entry verified: %w", err)
		}
		fmt.Printf("verified %q\n", key)
		return nil
	}

	err = a.Knowledge.UpdateAnswer(ctx, key, answer)
	if errors.Is(err, knowledge.ErrNotFound) {
		// New entry: store it, then promote it to verified since it
		// came from an operator rather than the generator.
		if _, err := a.Knowledge.UpsertLearned(ctx, key, question, answer); err != nil {
			return fmt.Errorf("storing new entry: %w", err)
		}
		if err := a.Knowledge.MarkVerified(ctx, key); err != nil {
			return fmt.Errorf("marking new entry verified: %w", err)
		}
		fmt.Printf("added %q\n", key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}
	fmt.Printf("updated %q\n", key)
	return nil
}
