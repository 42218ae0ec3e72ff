package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(backfillCmd)
}

var backfillCmd = &cobra.Command{
	Use:   "backfill <user_id>",
	Short: "Retries the pending notes of a user whose links had no coordinates.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		fixed, err := a.spots.BackfillPending(ctx, args[0])
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "backfill finished", "user_id", args[0], "fixed", fixed)
		return nil
	},
}
