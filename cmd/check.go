package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lukman83/bazenda-cli/internal/progress"
	"github.com/lukman83/bazenda-cli/internal/ui"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check current prices for all favorites once",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	spin := ui.NewSpinner()
	spin.Start("Checking prices...")
	ctx := progress.With(context.Background(), spin.Update)
	result := a.tracker.CheckPrices(ctx)
	spin.Stop()

	if format != "table" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Checked %d favorites: %d changed, %d errors\n", result.Checked, result.Changed, result.Errors)
	for _, d := range result.Details {
		fmt.Printf("  %s: %.2f -> %.2f (%+.2f)\n", d.ProductTitle, d.OldPrice, d.NewPrice, d.Change)
	}
	return nil
}
