package cmd

import (
	"fmt"

	"github.com/lukman83/bazenda-cli/mcp"
	"github.com/spf13/cobra"
)

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Run as an MCP server over HTTP",
	Long:  "Exposes the MCP tool set on an HTTP endpoint (/mcp) with optional Bearer token auth, plus a /healthz probe.",
	RunE:  runServeHTTP,
}

func init() {
	serveHTTPCmd.Flags().Int("port", 0, "Listen port (default from config, 8080)")
	rootCmd.AddCommand(serveHTTPCmd)
}

func runServeHTTP(cmd *cobra.Command, args []string) error {
	addr := ":" + cfg.HTTPPort
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		addr = fmt.Sprintf(":%d", port)
	}

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
	if err := mcp.ServeHTTP(addr, cfg.APIKey, deps); err != nil {
		return fmt.Errorf("mcp http server: %w", err)
	}
	return nil
}
