package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lukman83/bazenda-cli/internal/catalog"
	"github.com/lukman83/bazenda-cli/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(s *server.MCPServer, deps Deps) {
	// search_products
	searchTool := mcp.NewTool("search_products",
		mcp.WithDescription("Search Bazenda products by keyword"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search keyword or product id"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number (default: 1)"),
		),
		mcp.WithNumber("price_min",
			mcp.Description("Minimum price filter"),
		),
		mcp.WithNumber("price_max",
			mcp.Description("Maximum price filter"),
		),
	)
	s.AddTool(searchTool, handleSearch(deps))

	// visual_search
	visualTool := mcp.NewTool("visual_search",
		mcp.WithDescription("Find visually similar products from an image file on disk"),
		mcp.WithString("image_path",
			mcp.Required(),
			mcp.Description("Path to the image file to match"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number (default: 1)"),
		),
	)
	s.AddTool(visualTool, handleVisualSearch(deps))

	// get_trending
	trendingTool := mcp.NewTool("get_trending",
		mcp.WithDescription("Get trending products"),
		mcp.WithNumber("page",
			mcp.Description("Page number (default: 1)"),
		),
	)
	s.AddTool(trendingTool, handleTrending(deps))

	// list_favorites
	favoritesTool := mcp.NewTool("list_favorites",
		mcp.WithDescription("List favorited products with their price tracking state"),
	)
	s.AddTool(favoritesTool, handleListFavorites(deps))

	// toggle_favorite
	toggleTool := mcp.NewTool("toggle_favorite",
		mcp.WithDescription("Favorite a product by id, or unfavorite it when already favorited"),
		mcp.WithString("product_id",
			mcp.Required(),
			mcp.Description("Product id to toggle"),
		),
	)
	s.AddTool(toggleTool, handleToggleFavorite(deps))

	// check_prices
	checkTool := mcp.NewTool("check_prices",
		mcp.WithDescription("Reconcile current prices for all favorites and report changes"),
	)
	s.AddTool(checkTool, handleCheckPrices(deps))

	// get_notifications
	notificationsTool := mcp.NewTool("get_notifications",
		mcp.WithDescription("Fetch stored price notifications for this device"),
		mcp.WithNumber("limit",
			mcp.Description("Max notifications to return (default: 50)"),
		),
		mcp.WithBoolean("unread_only",
			mcp.Description("Return only unread notifications"),
		),
	)
	s.AddTool(notificationsTool, handleNotifications(deps))
}

func handleSearch(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := request.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		products, total, err := deps.Catalog.Search(ctx, query, catalog.SearchOpts{
			Page:     request.GetInt("page", 1),
			PriceMin: request.GetFloat("price_min", 0),
			PriceMax: request.GetFloat("price_max", 0),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search error: %v", err)), nil
		}

		return jsonResult(struct {
			Products   []models.Product `json:"products"`
			TotalCount int              `json:"total_count"`
		}{products, total}), nil
	}
}

func handleVisualSearch(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		imagePath := request.GetString("image_path", "")
		if imagePath == "" {
			return mcp.NewToolResultError("image_path is required"), nil
		}

		products, total, err := deps.Catalog.VisualSearch(ctx, imagePath, catalog.SearchOpts{
			Page: request.GetInt("page", 1),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("visual search error: %v", err)), nil
		}

		return jsonResult(struct {
			Products   []models.Product `json:"products"`
			TotalCount int              `json:"total_count"`
		}{products, total}), nil
	}
}

func handleTrending(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		products, err := deps.Catalog.Trending(ctx, request.GetInt("page", 1))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("trending error: %v", err)), nil
		}
		return jsonResult(products), nil
	}
}

func handleListFavorites(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(deps.Store.All()), nil
	}
}

func handleToggleFavorite(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		productID := request.GetString("product_id", "")
		if productID == "" {
			return mcp.NewToolResultError("product_id is required"), nil
		}

		// Unfavorite needs no catalog round trip.
		if deps.Store.IsFavorite(productID) {
			deps.Store.Remove(productID)
			return mcp.NewToolResultText(fmt.Sprintf("removed %s from favorites", productID)), nil
		}

		products, _, err := deps.Catalog.Search(ctx, productID, catalog.SearchOpts{Page: 1})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup error: %v", err)), nil
		}
		if len(products) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("product %s not found", productID)), nil
		}
		deps.Store.Add(products[0])
		return mcp.NewToolResultText(fmt.Sprintf("added %s to favorites", productID)), nil
	}
}

func handleCheckPrices(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(deps.Tracker.CheckPrices(ctx)), nil
	}
}

func handleNotifications(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		page, ok := deps.Backend.Notifications(ctx,
			request.GetInt("limit", 50), 0, request.GetBool("unread_only", false))
		if !ok {
			return mcp.NewToolResultError("notifications unavailable"), nil
		}
		return jsonResult(page), nil
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(data))
}
