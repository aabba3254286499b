package cmd

import (
	"fmt"

	"github.com/lukman83/bazenda-cli/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as an MCP server over stdio",
	Long:  "Exposes search, favorites, price checking and the notification inbox as MCP tools for AI assistants. Communicates over stdin/stdout.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	deps := mcp.Deps{
		Catalog: a.catalog,
		Store:   a.store,
		Tracker: a.tracker,
		Backend: a.gateway,
	}
	if err := mcp.Serve(deps); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
