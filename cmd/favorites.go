package cmd

import (
	"context"
	"fmt"

	"github.com/lukman83/bazenda-cli/internal/catalog"
	"github.com/lukman83/bazenda-cli/internal/models"
	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage favorited products",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites with their price tracking state",
	RunE:  runFavoritesList,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add [product id]",
	Short: "Favorite a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove [product id]",
	Short: "Unfavorite a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesRemove,
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle [product id]",
	Short: "Favorite a product, or unfavorite it when already favorited",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesToggle,
}

var favoritesAckCmd = &cobra.Command{
	Use:   "ack [product id]",
	Short: "Acknowledge (clear) a detected price change",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesAck,
}

var favoritesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all favorites",
	RunE:  runFavoritesClear,
}

var favoritesResyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Push the full favorite set to the backend",
	RunE:  runFavoritesResync,
}

func init() {
	favoritesListCmd.Flags().String("format", "table", "Output format: json, table")
	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd,
		favoritesToggleCmd, favoritesAckCmd, favoritesClearCmd, favoritesResyncCmd)
	rootCmd.AddCommand(favoritesCmd)
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	entries := a.store.All()
	if len(entries) == 0 && format == "table" {
		fmt.Println("No favorites yet.")
		return nil
	}
	return printFavorites(entries, format)
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	productID := args[0]

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store.IsFavorite(productID) {
		fmt.Printf("%s is already a favorite\n", productID)
		return nil
	}

	product, err := lookupProduct(cmd.Context(), a, productID)
	if err != nil {
		return err
	}
	a.store.Add(*product)
	fmt.Printf("Added %s (%s) at %s\n", product.ProductTitle, productID, product.Price)
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store.Remove(args[0]) {
		fmt.Printf("Removed %s\n", args[0])
	} else {
		fmt.Printf("%s was not a favorite\n", args[0])
	}
	return nil
}

func runFavoritesToggle(cmd *cobra.Command, args []string) error {
	productID := args[0]

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store.IsFavorite(productID) {
		a.store.Remove(productID)
		fmt.Printf("Removed %s\n", productID)
		return nil
	}

	product, err := lookupProduct(cmd.Context(), a, productID)
	if err != nil {
		return err
	}
	a.store.Toggle(*product)
	fmt.Printf("Added %s (%s)\n", product.ProductTitle, productID)
	return nil
}

func runFavoritesAck(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store.ClearPriceChange(args[0]) {
		fmt.Printf("Cleared price change for %s\n", args[0])
	} else {
		fmt.Printf("%s is not a favorite\n", args[0])
	}
	return nil
}

func runFavoritesClear(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	count := a.store.Count()
	a.store.Clear()
	fmt.Printf("Removed %d favorites\n", count)
	return nil
}

func runFavoritesResync(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.store.Resync()
	fmt.Printf("Resyncing %d favorites\n", a.store.Count())
	return nil
}

// lookupProduct fetches the product snapshot captured at favorite-time.
func lookupProduct(ctx context.Context, a *app, productID string) (*models.Product, error) {
	products, _, err := a.catalog.Search(ctx, productID, catalog.SearchOpts{Page: 1})
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", productID, err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("product %s not found", productID)
	}
	return &products[0], nil
}
