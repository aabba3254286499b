package cmd

import (
	"context"
	"fmt"

	"github.com/lukman83/bazenda-cli/internal/catalog"
	"github.com/lukman83/bazenda-cli/internal/progress"
	"github.com/lukman83/bazenda-cli/internal/ui"
	"github.com/spf13/cobra"
)

var visualCmd = &cobra.Command{
	Use:   "visual [image file]",
	Short: "Search products by photo",
	Long:  "Upload an image and find visually similar products. Matching happens server-side; only the image leaves this machine.",
	Args:  cobra.ExactArgs(1),
	RunE:  runVisual,
}

func init() {
	visualCmd.Flags().Int("page", 1, "Page number")
	visualCmd.Flags().Float64("price-min", 0, "Minimum price")
	visualCmd.Flags().Float64("price-max", 0, "Maximum price")
	visualCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(visualCmd)
}

func runVisual(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	page, _ := cmd.Flags().GetInt("page")
	priceMin, _ := cmd.Flags().GetFloat64("price-min")
	priceMax, _ := cmd.Flags().GetFloat64("price-max")
	format, _ := cmd.Flags().GetString("format")

	spin := ui.NewSpinner()
	spin.Start("Uploading image and matching products...")
	ctx := progress.With(context.Background(), spin.Update)
	products, total, err := buildCatalog().VisualSearch(ctx, imagePath, catalog.SearchOpts{
		Page:     page,
		PriceMin: priceMin,
		PriceMax: priceMax,
	})
	spin.Stop()
	if err != nil {
		return fmt.Errorf("visual search failed: %w", err)
	}
	if format == "table" {
		fmt.Printf("%d visually similar products\n\n", total)
	}
	return printProducts(products, format)
}
