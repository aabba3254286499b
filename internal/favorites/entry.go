package favorites

import (
	"time"

	"github.com/lukman83/bazenda-cli/internal/models"
)

// Entry is one favorited product and everything price tracking knows
// about it. AddedAt and InitialPrice are set once at favorite time and
// never change; LastCheckedPrice advances only through
// Store.UpdatePrice.
type Entry struct {
	Product models.Product `json:"product"`
	AddedAt time.Time      `json:"added_at"`

	InitialPrice     float64             `json:"initial_price"`
	LastCheckedPrice float64             `json:"last_checked_price"`
	PriceHistory     []models.PricePoint `json:"price_history"`

	// PriceChanged, PriceChangeAmount and PriceChangePercentage are set
	// and cleared together: when PriceChanged is false both deltas are
	// zero.
	PriceChanged          bool    `json:"price_changed"`
	PriceChangeAmount     float64 `json:"price_change_amount"`
	PriceChangePercentage float64 `json:"price_change_percentage"`

	// NotificationSent guards at-most-one notification per detected
	// change. UpdatePrice resets it so the next change can notify again.
	NotificationSent bool `json:"notification_sent"`
}

// clone returns a deep copy so callers can never mutate store state
// through a returned entry.
func (e *Entry) clone() Entry {
	dup := *e
	if len(e.PriceHistory) > 0 {
		dup.PriceHistory = make([]models.PricePoint, len(e.PriceHistory))
		copy(dup.PriceHistory, e.PriceHistory)
	}
	return dup
}
