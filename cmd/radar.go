package cmd

import (
	"context"
	"fmt"

	"github.com/lukman83/bazenda-cli/internal/progress"
	"github.com/lukman83/bazenda-cli/internal/ui"
	"github.com/spf13/cobra"
)

var radarCmd = &cobra.Command{
	Use:   "radar",
	Short: "Show radar picks",
	RunE:  runRadar,
}

func init() {
	radarCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(radarCmd)
}

func runRadar(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	spin := ui.NewSpinner()
	spin.Start("Fetching radar picks...")
	ctx := progress.With(context.Background(), spin.Update)
	products, err := buildCatalog().Radar(ctx)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("radar failed: %w", err)
	}
	return printProducts(products, format)
}
