package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"shunshun-bot/internal/extract"
)

func init() {
	rootCmd.AddCommand(mapCmd)
}

var mapCmd = &cobra.Command{
	Use:   "map <raw_message> <user_id> [<reply_token>]",
	Short: "Saves a shared map link, or runs the radar when the message is a lat,lng pair.",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		raw, userID, replyToken := args[0], args[1], optionalArg(args, 2)
		if center, ok := extract.ParseLatLng(extract.Normalize(raw)); ok {
			return a.spots.Radar(ctx, userID, center, replyToken)
		}

		spot, err := a.spots.SaveTask(ctx, raw, userID, replyToken)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "spot stored",
			"id", spot.ID,
			"name", spot.LocationName,
			"category", spot.Category,
			"pending", spot.IsPending(),
		)
		return nil
	},
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}
