package storage

import (
	"testing"
	"time"

	"github.com/lukman83/bazenda-cli/internal/favorites"
	"github.com/lukman83/bazenda-cli/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleEntry(id string) favorites.Entry {
	added := time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC)
	return favorites.Entry{
		Product: models.Product{
			ProductID:    id,
			ProductTitle: "Leather Boots",
			Price:        "899,90 ₺",
			RawPrice:     899.90,
			ShopName:     "Test Shop",
			OriginalLink: "https://shop.example/boots",
		},
		AddedAt:          added,
		InitialPrice:     899.90,
		LastCheckedPrice: 849.90,
		PriceHistory: []models.PricePoint{
			{Price: 899.90, Timestamp: added},
			{Price: 849.90, Timestamp: added.Add(time.Hour)},
		},
		PriceChanged:          true,
		PriceChangeAmount:     -50,
		PriceChangePercentage: -5.56,
		NotificationSent:      true,
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	db := newTestDB(t)

	want := sampleEntry("p1")
	if err := db.SaveEntry(want); err != nil {
		t.Fatal(err)
	}

	entries, err := db.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("loaded %d entries, want 1", len(entries))
	}

	got := entries[0]
	if got.Product.ProductID != "p1" || got.Product.ProductTitle != "Leather Boots" {
		t.Errorf("product = %+v", got.Product)
	}
	if got.InitialPrice != 899.90 || got.LastCheckedPrice != 849.90 {
		t.Errorf("prices = (%v, %v)", got.InitialPrice, got.LastCheckedPrice)
	}
	if !got.PriceChanged || got.PriceChangeAmount != -50 || !got.NotificationSent {
		t.Errorf("tracking state = %+v", got)
	}
	if len(got.PriceHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(got.PriceHistory))
	}
	if got.PriceHistory[1].Price != 849.90 {
		t.Errorf("history[1].Price = %v, want 849.90", got.PriceHistory[1].Price)
	}
	if !got.AddedAt.Equal(want.AddedAt) {
		t.Errorf("AddedAt = %v, want %v", got.AddedAt, want.AddedAt)
	}
}

func TestSaveEntryUpsertsAndRewritesHistory(t *testing.T) {
	db := newTestDB(t)

	e := sampleEntry("p1")
	if err := db.SaveEntry(e); err != nil {
		t.Fatal(err)
	}

	e.LastCheckedPrice = 799.90
	e.PriceHistory = append(e.PriceHistory, models.PricePoint{Price: 799.90, Timestamp: e.AddedAt.Add(2 * time.Hour)})
	if err := db.SaveEntry(e); err != nil {
		t.Fatal(err)
	}

	entries, err := db.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("loaded %d entries after upsert, want 1", len(entries))
	}
	if entries[0].LastCheckedPrice != 799.90 {
		t.Errorf("LastCheckedPrice = %v, want 799.90", entries[0].LastCheckedPrice)
	}
	if len(entries[0].PriceHistory) != 3 {
		t.Errorf("history length = %d, want 3 (no duplicated rows)", len(entries[0].PriceHistory))
	}
}

func TestDeleteEntry(t *testing.T) {
	db := newTestDB(t)
	db.SaveEntry(sampleEntry("p1"))
	db.SaveEntry(sampleEntry("p2"))

	if err := db.DeleteEntry("p1"); err != nil {
		t.Fatal(err)
	}

	entries, _ := db.LoadAll()
	if len(entries) != 1 || entries[0].Product.ProductID != "p2" {
		t.Errorf("entries after delete = %+v", entries)
	}
}

func TestDeleteAll(t *testing.T) {
	db := newTestDB(t)
	db.SaveEntry(sampleEntry("p1"))
	db.SaveEntry(sampleEntry("p2"))

	if err := db.DeleteAll(); err != nil {
		t.Fatal(err)
	}

	entries, err := db.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("entries after DeleteAll = %d, want 0", len(entries))
	}
}

func TestDeviceIDRoundTrip(t *testing.T) {
	db := newTestDB(t)

	id, err := db.DeviceID()
	if err != nil {
		t.Fatal(err)
	}
	if id != "" {
		t.Errorf("fresh database device id = %q, want empty", id)
	}

	if err := db.SetDeviceID("android_123_abc"); err != nil {
		t.Fatal(err)
	}
	id, err = db.DeviceID()
	if err != nil {
		t.Fatal(err)
	}
	if id != "android_123_abc" {
		t.Errorf("device id = %q", id)
	}

	// Overwrite keeps a single row.
	if err := db.SetDeviceID("android_456_def"); err != nil {
		t.Fatal(err)
	}
	id, _ = db.DeviceID()
	if id != "android_456_def" {
		t.Errorf("device id after overwrite = %q", id)
	}
}

func TestStoreIntegration(t *testing.T) {
	db := newTestDB(t)

	s := favorites.New(favorites.WithPersister(db))
	s.Add(models.Product{ProductID: "p1", ProductTitle: "Boots", RawPrice: 100})
	s.UpdatePrice("p1", 90)
	s.Flush()

	entries, err := db.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("persisted entries = %d, want 1", len(entries))
	}
	if entries[0].LastCheckedPrice != 90 {
		t.Errorf("persisted LastCheckedPrice = %v, want 90", entries[0].LastCheckedPrice)
	}

	// A second store warmed from the same database sees the same state.
	s2 := favorites.New(favorites.WithPersister(db))
	s2.Load(entries)
	if !s2.IsFavorite("p1") {
		t.Error("warmed store lost the favorite")
	}
}
