package cmd

import (
	"context"
	"fmt"

	"github.com/lukman83/bazenda-cli/internal/progress"
	"github.com/lukman83/bazenda-cli/internal/ui"
	"github.com/spf13/cobra"
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show trending products",
	RunE:  runTrending,
}

func init() {
	trendingCmd.Flags().Int("page", 1, "Page number")
	trendingCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(trendingCmd)
}

func runTrending(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	format, _ := cmd.Flags().GetString("format")

	spin := ui.NewSpinner()
	spin.Start("Fetching trending products...")
	ctx := progress.With(context.Background(), spin.Update)
	products, err := buildCatalog().Trending(ctx, page)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("trending failed: %w", err)
	}
	return printProducts(products, format)
}
