// Package favorites owns the local favorites map and its price-tracking
// state. The local map is the source of truth for the UI: mutations
// apply synchronously and remote sync runs afterwards on background
// goroutines, so a favorite is never lost because the network is down.
package favorites

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/lukman83/bazenda-cli/internal/models"
)

// priceTolerance is the absolute delta below which two prices are
// considered equal; smaller differences are float noise, not a change.
const priceTolerance = 0.01

// defaultHistoryLimit caps how many price points a favorite retains.
// The oldest points are evicted first.
const defaultHistoryLimit = 100

// Syncer pushes local favorite mutations to the backend. Every call is
// best-effort: implementations report failure through the returned bool
// and must never panic or block beyond their own timeout.
type Syncer interface {
	AddFavorite(ctx context.Context, productID string, currentPrice float64) bool
	RemoveFavorite(ctx context.Context, productID string) bool
	SyncFavorites(ctx context.Context, favorites []models.FavoriteRef) bool
}

// Persister flushes store mutations to durable storage. Writes happen
// in mutation order, after the in-memory change has already succeeded;
// failures are logged, never surfaced.
type Persister interface {
	SaveEntry(e Entry) error
	DeleteEntry(productID string) error
	DeleteAll() error
}

// Store is the authoritative local favorites map, keyed by product id.
type Store struct {
	mu      sync.RWMutex
	wg      sync.WaitGroup
	entries map[string]*Entry

	syncer       Syncer
	persister    Persister
	now          func() time.Time
	historyLimit int
	syncTimeout  time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithSyncer attaches the backend sync gateway.
func WithSyncer(s Syncer) Option {
	return func(st *Store) { st.syncer = s }
}

// WithPersister attaches durable storage.
func WithPersister(p Persister) Option {
	return func(st *Store) { st.persister = p }
}

// WithHistoryLimit overrides the per-favorite price history cap.
func WithHistoryLimit(n int) Option {
	return func(st *Store) {
		if n > 0 {
			st.historyLimit = n
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(st *Store) { st.now = now }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:      make(map[string]*Entry),
		now:          time.Now,
		historyLimit: defaultHistoryLimit,
		syncTimeout:  15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load seeds the store with previously persisted entries. Meant to be
// called once at startup before the store is shared; later duplicates
// of an already present product id are ignored.
func (s *Store) Load(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range entries {
		e := entries[i]
		if _, ok := s.entries[e.Product.ProductID]; ok {
			continue
		}
		s.entries[e.Product.ProductID] = &e
	}
}

// Add favorites a product. The entry is created synchronously with a
// snapshot of the product and a history seeded with its current price;
// the backend add runs in the background. Adding an already favorited
// product is a no-op. Returns true when a new entry was created.
func (s *Store) Add(p models.Product) bool {
	s.mu.Lock()
	if _, ok := s.entries[p.ProductID]; ok {
		s.mu.Unlock()
		return false
	}
	entry := s.newEntry(p)
	s.entries[p.ProductID] = entry
	snapshot := entry.clone()
	s.persistSave(snapshot)
	s.mu.Unlock()

	s.syncAsync(func(ctx context.Context, sy Syncer) bool {
		return sy.AddFavorite(ctx, snapshot.Product.ProductID, snapshot.InitialPrice)
	}, "add favorite", snapshot.Product.ProductID)
	return true
}

// Remove deletes a favorite. Removing an absent product id is a no-op,
// not an error. The backend removal runs in the background.
func (s *Store) Remove(productID string) bool {
	s.mu.Lock()
	if _, ok := s.entries[productID]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.entries, productID)
	s.persistDelete(productID)
	s.mu.Unlock()

	s.syncAsync(func(ctx context.Context, sy Syncer) bool {
		return sy.RemoveFavorite(ctx, productID)
	}, "remove favorite", productID)
	return true
}

// Toggle adds the product if absent and removes it if present, as a
// single atomic operation on the map. Rapid repeated toggles therefore
// alternate cleanly instead of racing a read against a stale write.
// Returns true when the product is a favorite after the call.
func (s *Store) Toggle(p models.Product) bool {
	s.mu.Lock()
	if _, ok := s.entries[p.ProductID]; ok {
		delete(s.entries, p.ProductID)
		s.persistDelete(p.ProductID)
		s.mu.Unlock()

		s.syncAsync(func(ctx context.Context, sy Syncer) bool {
			return sy.RemoveFavorite(ctx, p.ProductID)
		}, "remove favorite", p.ProductID)
		return false
	}

	entry := s.newEntry(p)
	s.entries[p.ProductID] = entry
	snapshot := entry.clone()
	s.persistSave(snapshot)
	s.mu.Unlock()

	s.syncAsync(func(ctx context.Context, sy Syncer) bool {
		return sy.AddFavorite(ctx, snapshot.Product.ProductID, snapshot.InitialPrice)
	}, "add favorite", snapshot.Product.ProductID)
	return true
}

// IsFavorite reports whether the product id is currently favorited.
func (s *Store) IsFavorite(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[productID]
	return ok
}

// Get returns a copy of the entry for the product id.
func (s *Store) Get(productID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[productID]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// All returns copies of every entry, oldest favorite first.
func (s *Store) All() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].Product.ProductID < out[j].Product.ProductID
		}
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out
}

// Count returns the number of favorites.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// UpdatePrice records a newly observed price. It is the only path that
// advances LastCheckedPrice: the observation is appended to the history,
// the change pair is recomputed against the previous price, and
// NotificationSent is reset so a fresh change can notify again.
// A no-op if the product is not favorited.
func (s *Store) UpdatePrice(productID string, newPrice float64) bool {
	s.mu.Lock()
	e, ok := s.entries[productID]
	if !ok {
		s.mu.Unlock()
		return false
	}

	previous := e.LastCheckedPrice
	delta := newPrice - previous

	e.LastCheckedPrice = newPrice
	e.PriceHistory = append(e.PriceHistory, models.PricePoint{Price: newPrice, Timestamp: s.now()})
	if len(e.PriceHistory) > s.historyLimit {
		e.PriceHistory = e.PriceHistory[len(e.PriceHistory)-s.historyLimit:]
	}

	if math.Abs(delta) > priceTolerance {
		e.PriceChanged = true
		e.PriceChangeAmount = delta
		if previous != 0 {
			e.PriceChangePercentage = delta / previous * 100
		} else {
			e.PriceChangePercentage = 0
		}
	} else {
		e.PriceChanged = false
		e.PriceChangeAmount = 0
		e.PriceChangePercentage = 0
	}
	e.NotificationSent = false

	s.persistSave(e.clone())
	s.mu.Unlock()
	return true
}

// MarkNotificationSent records that the current detected change has been
// notified. A no-op if the product is not favorited.
func (s *Store) MarkNotificationSent(productID string) bool {
	s.mu.Lock()
	e, ok := s.entries[productID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	e.NotificationSent = true
	s.persistSave(e.clone())
	s.mu.Unlock()
	return true
}

// ClearPriceChange acknowledges a detected change: the change pair is
// cleared together and the notification guard reset. A no-op if the
// product is not favorited.
func (s *Store) ClearPriceChange(productID string) bool {
	s.mu.Lock()
	e, ok := s.entries[productID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	e.PriceChanged = false
	e.PriceChangeAmount = 0
	e.PriceChangePercentage = 0
	e.NotificationSent = false
	s.persistSave(e.clone())
	s.mu.Unlock()
	return true
}

// Clear empties the store and pushes one empty full resync to the
// backend: a single replace call, not one removal per favorite.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*Entry)
	if s.persister != nil {
		if err := s.persister.DeleteAll(); err != nil {
			log.Printf("favorites: persist clear failed: %v", err)
		}
	}
	s.mu.Unlock()

	s.syncAsync(func(ctx context.Context, sy Syncer) bool {
		return sy.SyncFavorites(ctx, []models.FavoriteRef{})
	}, "resync favorites", "")
}

// Refs returns the minimal projection of all favorites for a full
// backend resync.
func (s *Store) Refs() []models.FavoriteRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]models.FavoriteRef, 0, len(s.entries))
	for id, e := range s.entries {
		refs = append(refs, models.FavoriteRef{ProductID: id, CurrentPrice: e.LastCheckedPrice})
	}
	return refs
}

// Resync pushes the current favorite set to the backend in one call.
func (s *Store) Resync() {
	refs := s.Refs()
	s.syncAsync(func(ctx context.Context, sy Syncer) bool {
		return sy.SyncFavorites(ctx, refs)
	}, "resync favorites", "")
}

// Flush blocks until every background sync spawned so far has finished.
// Call before teardown so the last mutation reaches the backend.
func (s *Store) Flush() {
	s.wg.Wait()
}

func (s *Store) newEntry(p models.Product) *Entry {
	price := p.NumericPrice()
	if price == 0 {
		log.Printf("favorites: product %s has no parseable price (%q), tracking from 0", p.ProductID, p.Price)
	}
	now := s.now()
	return &Entry{
		Product:          p,
		AddedAt:          now,
		InitialPrice:     price,
		LastCheckedPrice: price,
		PriceHistory:     []models.PricePoint{{Price: price, Timestamp: now}},
	}
}

// syncAsync runs one gateway call on a background goroutine so mutators
// return without waiting on the network. Failures are logged only.
func (s *Store) syncAsync(call func(ctx context.Context, sy Syncer) bool, op, productID string) {
	if s.syncer == nil {
		return
	}
	sy := s.syncer
	timeout := s.syncTimeout
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if !call(ctx, sy) {
			if productID != "" {
				log.Printf("favorites: backend %s failed for %s (local state kept)", op, productID)
			} else {
				log.Printf("favorites: backend %s failed (local state kept)", op)
			}
		}
	}()
}

// persistSave and persistDelete run under the store lock so durable
// state always applies mutations in the same order memory saw them.
func (s *Store) persistSave(e Entry) {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveEntry(e); err != nil {
		log.Printf("favorites: persist %s failed: %v", e.Product.ProductID, err)
	}
}

func (s *Store) persistDelete(productID string) {
	if s.persister == nil {
		return
	}
	if err := s.persister.DeleteEntry(productID); err != nil {
		log.Printf("favorites: delete %s from storage failed: %v", productID, err)
	}
}
