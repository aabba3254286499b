// Package mcp exposes the shopping client as MCP tools: catalog search,
// favorites management, price checks and the notification inbox.
package mcp

import (
	"github.com/lukman83/bazenda-cli/internal/backend"
	"github.com/lukman83/bazenda-cli/internal/catalog"
	"github.com/lukman83/bazenda-cli/internal/favorites"
	"github.com/lukman83/bazenda-cli/internal/tracker"
	"github.com/mark3labs/mcp-go/server"
)

// Deps are the application components the tools operate on.
type Deps struct {
	Catalog *catalog.Client
	Store   *favorites.Store
	Tracker *tracker.Tracker
	Backend *backend.Gateway
}

func newServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"bazenda-cli",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	registerTools(s, deps)
	return s
}

// Serve starts the MCP stdio server with all tools registered.
func Serve(deps Deps) error {
	return server.ServeStdio(newServer(deps))
}
