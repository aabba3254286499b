package cmd

import (
	"context"
	"fmt"

	"github.com/lukman83/bazenda-cli/internal/catalog"
	"github.com/lukman83/bazenda-cli/internal/progress"
	"github.com/lukman83/bazenda-cli/internal/ui"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search products by keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("page", 1, "Page number")
	searchCmd.Flags().Int("pages", 1, "Fetch this many pages concurrently")
	searchCmd.Flags().String("sort", "0", "API sort key")
	searchCmd.Flags().Float64("price-min", 0, "Minimum price")
	searchCmd.Flags().Float64("price-max", 0, "Maximum price")
	searchCmd.Flags().StringSlice("gender", nil, "Gender filter (repeatable)")
	searchCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	page, _ := cmd.Flags().GetInt("page")
	pages, _ := cmd.Flags().GetInt("pages")
	sortBy, _ := cmd.Flags().GetString("sort")
	priceMin, _ := cmd.Flags().GetFloat64("price-min")
	priceMax, _ := cmd.Flags().GetFloat64("price-max")
	genders, _ := cmd.Flags().GetStringSlice("gender")
	format, _ := cmd.Flags().GetString("format")

	client := buildCatalog()
	opts := catalog.SearchOpts{
		Page:     page,
		SortBy:   sortBy,
		PriceMin: priceMin,
		PriceMax: priceMax,
		Genders:  genders,
	}

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Searching '%s'...", query))
	ctx := progress.With(context.Background(), spin.Update)

	if pages > 1 {
		results, err := client.SearchAll(ctx, query, pages, opts)
		spin.Stop()
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return printProducts(results, format)
	}

	results, total, err := client.Search(ctx, query, opts)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if format == "table" && total > 0 {
		fmt.Printf("%d results (page %d)\n\n", total, page)
	}
	return printProducts(results, format)
}
