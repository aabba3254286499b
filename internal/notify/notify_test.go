package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingSink struct {
	sent []PriceChange
	err  error
}

func (r *recordingSink) PriceChange(_ context.Context, n PriceChange) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func TestBridgeFansOutToAllSinks(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	bridge := NewBridge(a, b)

	bridge.PriceChange(context.Background(), PriceChange{ProductID: "p1", NewPrice: 80})

	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Errorf("sinks received %d/%d alerts, want 1/1", len(a.sent), len(b.sent))
	}
}

func TestBridgeSinkFailureDoesNotStopFanOut(t *testing.T) {
	failing := &recordingSink{err: errors.New("sink down")}
	healthy := &recordingSink{}
	bridge := NewBridge(failing, healthy)

	if err := bridge.PriceChange(context.Background(), PriceChange{ProductID: "p1"}); err != nil {
		t.Errorf("bridge must swallow sink failures, got %v", err)
	}
	if len(healthy.sent) != 1 {
		t.Error("healthy sink skipped after a failing one")
	}
}

func TestBridgeInvokesListeners(t *testing.T) {
	bridge := NewBridge(&recordingSink{})
	var seen []string
	bridge.AddListener(func(n PriceChange) {
		seen = append(seen, n.ProductID)
	})

	bridge.PriceChange(context.Background(), PriceChange{ProductID: "p1"})
	bridge.PriceChange(context.Background(), PriceChange{ProductID: "p2"})

	if len(seen) != 2 || seen[0] != "p1" || seen[1] != "p2" {
		t.Errorf("listener saw %v", seen)
	}
}

func TestMessageWording(t *testing.T) {
	drop := PriceChange{
		ProductTitle:          "Boots",
		NewPrice:              80,
		PriceChangeAmount:     -20,
		PriceChangePercentage: -20,
	}
	if msg := drop.Message(); !strings.HasPrefix(msg, "Price dropped!") {
		t.Errorf("drop message = %q", msg)
	}

	rise := PriceChange{
		ProductTitle:          "Boots",
		NewPrice:              120,
		PriceChangeAmount:     20,
		PriceChangePercentage: 20,
	}
	msg := rise.Message()
	if !strings.HasPrefix(msg, "Price changed:") {
		t.Errorf("rise message = %q", msg)
	}
	if strings.Contains(msg, "-") {
		t.Errorf("rise message should not carry a sign flip: %q", msg)
	}
}
