// Package notify delivers local price-change alerts. The bridge fans a
// payload out to every configured sink and then invokes registered
// listeners (the hook UI layers use to react to a tapped alert).
// Delivery failures are logged, never propagated: a missed alert must
// not disturb reconciliation.
package notify

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
)

// PriceChange is the payload of one price alert.
type PriceChange struct {
	ProductID             string
	ProductTitle          string
	ProductImage          string
	OldPrice              float64
	NewPrice              float64
	PriceChangeAmount     float64
	PriceChangePercentage float64
}

// Message renders the alert body the way the app words it.
func (n PriceChange) Message() string {
	if n.PriceChangeAmount < 0 {
		return fmt.Sprintf("Price dropped! %s: down %.2f (%.1f%%), now %.2f",
			n.ProductTitle, math.Abs(n.PriceChangeAmount), math.Abs(n.PriceChangePercentage), n.NewPrice)
	}
	return fmt.Sprintf("Price changed: %s: up %.2f (%.1f%%), now %.2f",
		n.ProductTitle, n.PriceChangeAmount, n.PriceChangePercentage, n.NewPrice)
}

// Notifier is one delivery sink.
type Notifier interface {
	PriceChange(ctx context.Context, n PriceChange) error
}

// Listener observes alerts after delivery (e.g. to open the product).
type Listener func(n PriceChange)

// Bridge multiplexes alerts to sinks and listeners.
type Bridge struct {
	mu        sync.RWMutex
	sinks     []Notifier
	listeners []Listener
}

// NewBridge creates a Bridge over the given sinks.
func NewBridge(sinks ...Notifier) *Bridge {
	return &Bridge{sinks: sinks}
}

// AddListener registers a callback invoked after each dispatched alert.
func (b *Bridge) AddListener(fn Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// PriceChange delivers the alert to every sink. Individual sink
// failures are logged and do not stop the fan-out.
func (b *Bridge) PriceChange(ctx context.Context, n PriceChange) error {
	b.mu.RLock()
	sinks := make([]Notifier, len(b.sinks))
	copy(sinks, b.sinks)
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.PriceChange(ctx, n); err != nil {
			log.Printf("notify: dispatch for %s failed: %v", n.ProductID, err)
		}
	}
	for _, fn := range listeners {
		fn(n)
	}
	return nil
}

// LogNotifier prints alerts to the process log. Always available.
type LogNotifier struct{}

// PriceChange implements Notifier.
func (LogNotifier) PriceChange(_ context.Context, n PriceChange) error {
	log.Printf("notify: %s", n.Message())
	return nil
}
