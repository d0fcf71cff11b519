package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordparty/internal/model"
)

var (
	cfg    *Config
	out    *Output
	logger *slog.Logger
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "wordparty",
		Short: "Five-letter word guessing, solo or as a party",
		Long: `wordparty is a five-letter word guessing game.

Play alone with "solo", or create and join parties that are kept in a shared
store ("memory" for a single process, "redis" to play across machines).
Parties can be inspected through the server's API with the "remote" commands.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			logger = cfg.NewLogger(cmd.ErrOrStderr())
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "Shared store: memory, redis (env: STORAGE_TYPE)")
	flags.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for the redis store (env: REDIS_URL)")
	flags.StringVar(&cfg.IdentityFile, "identity-file", cfg.IdentityFile, "File keeping this device's identity (env: WORDPARTY_IDENTITY_FILE)")
	flags.StringVar(&cfg.WordsDir, "words", cfg.WordsDir, "Directory with answers.txt and optional allowed.txt (env: WORDPARTY_WORDS)")
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Inspect server URL for remote commands (env: WORDPARTY_SERVER)")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newSoloCmd())
	rootCmd.AddCommand(newPartyCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newEvaluateCmd())
	rootCmd.AddCommand(newRemoteCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// describeError prefers the user-facing reason of a validation error
func describeError(err error) string {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return err.Error()
}
