package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lukman83/bazenda-cli/internal/favorites"
	"github.com/lukman83/bazenda-cli/internal/models"
)

// printProducts writes products as JSON or a human-friendly card layout.
func printProducts(products []models.Product, format string) error {
	if format != "table" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	}
	for i, p := range products {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprintf(os.Stdout, " %d. %s\n", i+1, p.ProductTitle)

		priceLine := "    Price: " + p.Price
		if p.LastPrice != "" && p.LastPrice != p.Price {
			priceLine += fmt.Sprintf("  (was %s)", p.LastPrice)
		}
		if p.DiscountAmount != "" {
			priceLine += fmt.Sprintf("  [-%s]", strings.TrimPrefix(p.DiscountAmount, "-"))
		}
		if p.ShopName != "" {
			priceLine += "  |  Shop: " + p.ShopName
		}
		fmt.Fprintln(os.Stdout, priceLine)

		if p.SimilarityScore > 0 {
			fmt.Fprintf(os.Stdout, "    Match: %.0f%%\n", p.SimilarityScore*100)
		}
		if p.ProductLink != "" {
			fmt.Fprintf(os.Stdout, "    %s\n", p.ProductLink)
		}
	}
	return nil
}

// printFavorites writes favorite entries with their tracking state.
func printFavorites(entries []favorites.Entry, format string) error {
	if format != "table" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprintf(os.Stdout, " %d. %s [%s]\n", i+1, e.Product.ProductTitle, e.Product.ProductID)
		fmt.Fprintf(os.Stdout, "    Added %s at %.2f, now %.2f (%d price points)\n",
			e.AddedAt.Format("2006-01-02"), e.InitialPrice, e.LastCheckedPrice, len(e.PriceHistory))
		if e.PriceChanged {
			dir := "up"
			if e.PriceChangeAmount < 0 {
				dir = "down"
			}
			fmt.Fprintf(os.Stdout, "    Changed: %s %.2f (%.1f%%)\n", dir, abs(e.PriceChangeAmount), abs(e.PriceChangePercentage))
		}
		if e.Product.ShopName != "" {
			fmt.Fprintf(os.Stdout, "    Shop: %s\n", e.Product.ShopName)
		}
	}
	return nil
}

// printNotifications writes the remote notification inbox.
func printNotifications(page models.NotificationsPage, format string) error {
	if format != "table" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}
	fmt.Fprintf(os.Stdout, "%d notifications (%d unread)\n", page.TotalCount, page.UnreadCount)
	for _, n := range page.Notifications {
		marker := " "
		if n.IsRead == 0 {
			marker = "*"
		}
		fmt.Fprintf(os.Stdout, "%s #%d %s: %s\n", marker, n.ID, n.Title, n.Body)
	}
	return nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
