package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var monitorOnce *bool

func init() {
	monitorOnce = monitorCmd.Flags().Bool("once", false, "Run a single pass and exit.")
	rootCmd.AddCommand(monitorCmd)
}

var monitorCmd = &cobra.Command{
	Use:   "monitor [--once]",
	Short: "Re-checks the price of every tracked product.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if *monitorOnce {
			summary := a.monitor.CheckAll(ctx)
			slog.InfoContext(ctx, "price check finished",
				"checked", summary.Checked,
				"drops", summary.Drops,
				"deactivated", summary.Deactivated,
				"failed", summary.Failed,
			)
			return nil
		}

		a.monitor.Start(ctx)
		return nil
	},
}
