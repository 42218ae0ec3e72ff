// Package commands holds the shunshun command line.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shunshun-bot/config"
	"shunshun-bot/internal/logging"
)

var (
	cfg      *config.Config
	logLevel *string
)

var rootCmd = &cobra.Command{
	Use:   "shunshun",
	Short: "shunshun is the LINE bot behind the ShunShun map and the price tracker.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if *logLevel != "" {
			loaded.LogLevel = *logLevel
		}
		logging.Setup(loaded.LogLevel)
		cfg = loaded
		return nil
	},
	SilenceUsage: true,
}

func init() {
	logLevel = rootCmd.PersistentFlags().String("log-level", "", "Overrides LOG_LEVEL (debug, info, warn, error).")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
