package commands

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"shunshun-bot/internal/extract"
)

func init() {
	rootCmd.AddCommand(priceCmd)
}

var priceCmd = &cobra.Command{
	Use:   "price <raw_message> <user_id> [<reply_token>]",
	Short: "Starts tracking the Momo or PChome product linked in a message.",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		product, err := a.prices.TrackTask(ctx, args[0], args[1], optionalArg(args, 2))
		if errors.Is(err, extract.ErrNoURL) {
			slog.WarnContext(ctx, "no link in message")
			return nil
		}
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "price recorded",
			"id", product.ID,
			"title", product.ProductName,
			"price", product.CurrentPrice,
		)
		return nil
	},
}
