package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/lukman83/bazenda-cli/config"
	"github.com/lukman83/bazenda-cli/internal/backend"
	"github.com/lukman83/bazenda-cli/internal/catalog"
	"github.com/lukman83/bazenda-cli/internal/favorites"
	"github.com/lukman83/bazenda-cli/internal/identity"
	"github.com/lukman83/bazenda-cli/internal/notify"
	"github.com/lukman83/bazenda-cli/internal/storage"
	"github.com/lukman83/bazenda-cli/internal/tracker"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bazenda",
	Short: "Bazenda - shopping search & price tracking CLI and MCP server",
	Long:  "A Go client for the Bazenda shopping backend: product search, visual search, favorites with local-first price tracking, and an MCP server surface.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("api-url", "", "Bazenda API base URL")
	rootCmd.PersistentFlags().String("db", "", "Path to the local state database")
	rootCmd.PersistentFlags().Bool("page-fallback", true, "Fetch shop pages when the search index misses a favorite")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt on shop-page fetches")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("api-url"); v != "" {
		cfg.APIBaseURL = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("db"); v != "" {
		cfg.DatabasePath = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("page-fallback"); !v {
		cfg.PageFallback = false
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("respect-robots"); !v {
		cfg.RespectRobots = false
	}
}

// buildAPIClient creates the rate-limited HTTP client shared by the
// catalog and the sync gateway.
func buildAPIClient() *http.Client {
	transport := &catalog.Transport{
		Base: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
		},
		Limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
	}
	return httpClientWith(transport)
}

func httpClientWith(transport http.RoundTripper) *http.Client {
	return &http.Client{Transport: transport, Timeout: cfg.Timeout}
}

// buildCatalog creates a standalone catalog client for read-only
// commands that never touch local state.
func buildCatalog() *catalog.Client {
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)
	return catalog.NewClient(buildAPIClient(), cfg.APIBaseURL, limiter, cfg.MaxConcurrent)
}

// app bundles the fully wired components behind the stateful commands.
type app struct {
	db       *storage.DB
	store    *favorites.Store
	identity *identity.Provider
	gateway  *backend.Gateway
	catalog  *catalog.Client
	bridge   *notify.Bridge
	tracker  *tracker.Tracker
}

// openApp wires storage, identity, gateway, store, catalog and tracker
// together. Callers must Close when done.
func openApp() (*app, error) {
	db, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}

	ids := identity.NewProvider(db, cfg.Platform)
	client := buildAPIClient()
	gateway := backend.NewGateway(client, cfg.APIBaseURL, ids, cfg.Platform, cfg.AppVersion)

	store := favorites.New(
		favorites.WithSyncer(gateway),
		favorites.WithPersister(db),
		favorites.WithHistoryLimit(cfg.HistoryLimit),
	)
	entries, err := db.LoadAll()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	store.Load(entries)

	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)
	cat := catalog.NewClient(client, cfg.APIBaseURL, limiter, cfg.MaxConcurrent)

	sinks := []notify.Notifier{notify.LogNotifier{}}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("telegram notifier unavailable: %v", err)
		} else {
			sinks = append(sinks, tg)
		}
	}
	bridge := notify.NewBridge(sinks...)

	opts := []tracker.Option{tracker.WithCheckDelay(cfg.CheckDelay)}
	if cfg.PageFallback {
		pageHTTP := httpClientWith(nil)
		robots := catalog.NewRobotsChecker(pageHTTP, cfg.RespectRobots)
		opts = append(opts, tracker.WithPageFallback(catalog.NewPageClient(pageHTTP, robots)))
	}
	trk := tracker.New(store, cat, bridge, opts...)

	return &app{
		db:       db,
		store:    store,
		identity: ids,
		gateway:  gateway,
		catalog:  cat,
		bridge:   bridge,
		tracker:  trk,
	}, nil
}

// Close drains pending background work and closes storage.
func (a *app) Close() {
	a.store.Flush()
	if err := a.db.Close(); err != nil {
		log.Printf("close local state: %v", err)
	}
}
