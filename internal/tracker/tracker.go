// Package tracker is the price reconciliation engine: it re-queries the
// catalog for every favorite, feeds observed prices back into the
// store, and decides which changes deserve a notification.
package tracker

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lukman83/bazenda-cli/internal/catalog"
	"github.com/lukman83/bazenda-cli/internal/favorites"
	"github.com/lukman83/bazenda-cli/internal/models"
	"github.com/lukman83/bazenda-cli/internal/notify"
	"github.com/lukman83/bazenda-cli/internal/progress"
)

// priceTolerance mirrors the store's noise threshold: absolute deltas
// at or below it are not price changes.
const priceTolerance = 0.01

// increaseNotifyPercent is the minimum increase (percent) worth an
// alert. Decreases always alert; small routine increases do not.
const increaseNotifyPercent = 5.0

const defaultCheckDelay = 500 * time.Millisecond

// Searcher is the catalog seam: one query by product id.
type Searcher interface {
	Search(ctx context.Context, query string, opts catalog.SearchOpts) ([]models.Product, int, error)
}

// PagePricer recovers a price straight from the product's shop page.
type PagePricer interface {
	PagePrice(ctx context.Context, pageURL string) (float64, error)
}

// Detail is one reconciled price change.
type Detail struct {
	ProductID    string  `json:"product_id"`
	ProductTitle string  `json:"product_title"`
	OldPrice     float64 `json:"old_price"`
	NewPrice     float64 `json:"new_price"`
	Change       float64 `json:"change"`
}

// Result summarizes one reconciliation run.
type Result struct {
	Checked int      `json:"checked"`
	Changed int      `json:"changed"`
	Errors  int      `json:"errors"`
	Details []Detail `json:"details"`
}

// Status describes the engine for UI consumers.
type Status struct {
	Running       bool      `json:"running"`
	FavoriteCount int       `json:"favorite_count"`
	LastRun       time.Time `json:"last_run,omitzero"`
	LastResult    Result    `json:"last_result"`
}

// Tracker runs reconciliation over a favorites store.
type Tracker struct {
	store    *favorites.Store
	search   Searcher
	pages    PagePricer // optional shop-page fallback
	notifier notify.Notifier
	delay    time.Duration

	running atomic.Bool

	mu         sync.Mutex
	lastRun    time.Time
	lastResult Result
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPageFallback enables the shop-page price fallback for products
// the search index no longer returns.
func WithPageFallback(p PagePricer) Option {
	return func(t *Tracker) { t.pages = p }
}

// WithCheckDelay overrides the pause between per-product queries.
func WithCheckDelay(d time.Duration) Option {
	return func(t *Tracker) {
		if d >= 0 {
			t.delay = d
		}
	}
}

// New creates a Tracker.
func New(store *favorites.Store, search Searcher, notifier notify.Notifier, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		search:   search,
		notifier: notifier,
		delay:    defaultCheckDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CheckPrices reconciles every favorite against the catalog, strictly
// sequentially with a pause between queries to stay under upstream rate
// limits. Safe to trigger from both the manual and the scheduled path:
// when a run is already in progress the call returns an immediate zero
// Result without touching the network.
func (t *Tracker) CheckPrices(ctx context.Context) Result {
	if !t.running.CompareAndSwap(false, true) {
		log.Printf("tracker: check already in progress, skipping")
		return Result{}
	}
	defer t.running.Store(false)

	var result Result

	// Work from a snapshot: favorites added mid-run are picked up on the
	// next reconciliation, not this one.
	favs := t.store.All()
	if len(favs) == 0 {
		t.record(result)
		return result
	}
	progress.Report(ctx, fmt.Sprintf("Checking %d favorites...", len(favs)))

	for i, fav := range favs {
		if ctx.Err() != nil {
			break
		}
		result.Checked++
		progress.Report(ctx, fmt.Sprintf("Checking %d/%d: %s", i+1, len(favs), fav.Product.ProductTitle))

		newPrice, ok, err := t.currentPrice(ctx, fav)
		if err != nil {
			log.Printf("tracker: price check for %s failed: %v", fav.Product.ProductID, err)
			result.Errors++
			t.pause(ctx)
			continue
		}
		if !ok {
			log.Printf("tracker: product %s not found, skipping", fav.Product.ProductID)
			t.pause(ctx)
			continue
		}

		oldPrice := fav.LastCheckedPrice
		change := newPrice - oldPrice
		if math.Abs(change) > priceTolerance {
			t.store.UpdatePrice(fav.Product.ProductID, newPrice)

			changePct := 0.0
			if oldPrice != 0 {
				changePct = change / oldPrice * 100
			}

			// Re-read the guard after the update: UpdatePrice resets it for
			// a fresh change, while a concurrent notifier may have set it.
			if e, stillFav := t.store.Get(fav.Product.ProductID); stillFav &&
				t.shouldNotify(change, changePct) && !e.NotificationSent {
				t.dispatch(ctx, fav, oldPrice, newPrice, change, changePct)
				t.store.MarkNotificationSent(fav.Product.ProductID)
			}

			result.Changed++
			result.Details = append(result.Details, Detail{
				ProductID:    fav.Product.ProductID,
				ProductTitle: fav.Product.ProductTitle,
				OldPrice:     oldPrice,
				NewPrice:     newPrice,
				Change:       change,
			})
		}

		t.pause(ctx)
	}

	t.record(result)
	return result
}

// Watch runs an immediate reconciliation and then repeats on the given
// interval until ctx is cancelled. The loop is idempotent: a run that
// overlaps a manual trigger resolves to a no-op through the in-progress
// guard.
func (t *Tracker) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	log.Printf("tracker: watching %d favorites every %v", t.store.Count(), interval)

	t.CheckPrices(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.CheckPrices(ctx)
		}
	}
}

// Status reports whether a run is active plus the last summary.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Status{
		Running:       t.running.Load(),
		FavoriteCount: t.store.Count(),
		LastRun:       t.lastRun,
		LastResult:    t.lastResult,
	}
}

// currentPrice resolves a favorite's present price: catalog search by
// product id first, then the shop-page fallback. ok is false when the
// product cannot be found anywhere.
func (t *Tracker) currentPrice(ctx context.Context, fav favorites.Entry) (price float64, ok bool, err error) {
	products, _, err := t.search.Search(ctx, fav.Product.ProductID, catalog.SearchOpts{Page: 1})
	if err != nil {
		return 0, false, err
	}
	if len(products) > 0 {
		// Same normalization as favorite-time.
		return products[0].NumericPrice(), true, nil
	}

	if t.pages != nil && fav.Product.OriginalLink != "" {
		price, err := t.pages.PagePrice(ctx, fav.Product.OriginalLink)
		if err != nil {
			log.Printf("tracker: page fallback for %s failed: %v", fav.Product.ProductID, err)
			return 0, false, nil
		}
		return price, true, nil
	}
	return 0, false, nil
}

// shouldNotify applies the alert policy: every decrease alerts, an
// increase only when it exceeds the percentage threshold.
func (t *Tracker) shouldNotify(change, changePct float64) bool {
	if change < 0 {
		return true
	}
	return changePct > increaseNotifyPercent
}

func (t *Tracker) dispatch(ctx context.Context, fav favorites.Entry, oldPrice, newPrice, change, changePct float64) {
	if t.notifier == nil {
		return
	}
	err := t.notifier.PriceChange(ctx, notify.PriceChange{
		ProductID:             fav.Product.ProductID,
		ProductTitle:          fav.Product.ProductTitle,
		ProductImage:          fav.Product.ImageLink,
		OldPrice:              oldPrice,
		NewPrice:              newPrice,
		PriceChangeAmount:     change,
		PriceChangePercentage: changePct,
	})
	if err != nil {
		log.Printf("tracker: notify for %s failed: %v", fav.Product.ProductID, err)
	}
}

func (t *Tracker) pause(ctx context.Context) {
	if t.delay <= 0 {
		return
	}
	select {
	case <-time.After(t.delay):
	case <-ctx.Done():
	}
}

func (t *Tracker) record(r Result) {
	t.mu.Lock()
	t.lastRun = time.Now()
	t.lastResult = r
	t.mu.Unlock()
}
