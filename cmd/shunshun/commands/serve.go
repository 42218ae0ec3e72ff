package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"shunshun-bot/internal/server"
)

var (
	serveMonitor *bool
	servePort    *int
)

func init() {
	serveMonitor = serveCmd.Flags().Bool("monitor", false, "Also run the price monitor in the background.")
	servePort = serveCmd.Flags().Int("port", 0, "Overrides PORT.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--monitor] [--port <port>]",
	Short: "Serves the message endpoint and the LINE webhook.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		port := cfg.Port
		if *servePort > 0 {
			port = *servePort
		}

		// a nil *line.Client must not become a non-nil interface
		var webhook server.EventParser
		if a.lineClient != nil {
			webhook = a.lineClient
		} else {
			slog.Warn("LINE webhook disabled")
		}
		srv := server.New(a.router, webhook, a.messenger)

		group, ctx := errgroup.WithContext(cmd.Context())
		group.Go(func() error {
			return srv.ListenAndServe(ctx, port)
		})
		if *serveMonitor {
			group.Go(func() error {
				a.monitor.Start(ctx)
				return nil
			})
		}
		return group.Wait()
	},
}
