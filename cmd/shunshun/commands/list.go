package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listCategory *string

func init() {
	listCategory = listSpotsCmd.Flags().String("category", "", "Only list spots of this category (美食, 景點, 住宿, 其它).")
	listCmd.AddCommand(listProductsCmd)
	listCmd.AddCommand(listSpotsCmd)
	rootCmd.AddCommand(listCmd)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints what a user has stored.",
}

var listProductsCmd = &cobra.Command{
	Use:   "products <user_id>",
	Short: "Lists the products a user tracks, with their latest prices.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		products, err := a.store.ListProducts(ctx, args[0])
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Product", "Price", "Active", "Updated", "URL"})
		for _, p := range products {
			t.AppendRow(table.Row{
				p.ID,
				p.ProductName,
				fmt.Sprintf("$%d", p.CurrentPrice),
				p.IsActive,
				p.UpdatedAt.Local().Format("2006-01-02 15:04"),
				p.OriginalURL,
			})
		}
		t.Render()
		return nil
	},
}

var listSpotsCmd = &cobra.Command{
	Use:   "spots <user_id> [--category <category>]",
	Short: "Lists the places a user saved.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		spots, err := a.store.ListSpots(ctx, args[0], *listCategory)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Name", "Category", "Coordinates", "URL"})
		for _, s := range spots {
			coords := "-"
			if s.HasCoordinates() {
				coords = fmt.Sprintf("%.6f,%.6f", s.Latitude, s.Longitude)
			}
			t.AppendRow(table.Row{s.ID, s.LocationName, s.Category, coords, s.URL})
		}
		t.Render()
		return nil
	},
}

