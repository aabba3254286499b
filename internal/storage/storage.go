// Package storage flushes the favorites map and the device identity to
// a local SQLite database. Writes land in mutation order, after the
// in-memory change has already won; a write failure costs durability,
// never the mutation itself.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lukman83/bazenda-cli/internal/favorites"
	"github.com/lukman83/bazenda-cli/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// New opens (and initializes, if needed) the database at path.
// Use ":memory:" for a throwaway instance.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS favorites (
		product_id TEXT PRIMARY KEY,
		product_json TEXT NOT NULL,
		added_at DATETIME NOT NULL,
		initial_price REAL NOT NULL,
		last_checked_price REAL NOT NULL,
		price_changed INTEGER NOT NULL DEFAULT 0,
		price_change_amount REAL NOT NULL DEFAULT 0,
		price_change_percentage REAL NOT NULL DEFAULT 0,
		notification_sent INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS price_history (
		product_id TEXT NOT NULL,
		price REAL NOT NULL,
		observed_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history(product_id, observed_at);
	CREATE TABLE IF NOT EXISTS device (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEntry upserts one favorite and rewrites its history rows.
func (db *DB) SaveEntry(e favorites.Entry) error {
	productJSON, err := json.Marshal(e.Product)
	if err != nil {
		return fmt.Errorf("encode product %s: %w", e.Product.ProductID, err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO favorites (product_id, product_json, added_at, initial_price, last_checked_price,
			price_changed, price_change_amount, price_change_percentage, notification_sent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			product_json = excluded.product_json,
			last_checked_price = excluded.last_checked_price,
			price_changed = excluded.price_changed,
			price_change_amount = excluded.price_change_amount,
			price_change_percentage = excluded.price_change_percentage,
			notification_sent = excluded.notification_sent`,
		e.Product.ProductID, string(productJSON), e.AddedAt, e.InitialPrice, e.LastCheckedPrice,
		boolToInt(e.PriceChanged), e.PriceChangeAmount, e.PriceChangePercentage, boolToInt(e.NotificationSent),
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM price_history WHERE product_id = ?", e.Product.ProductID); err != nil {
		return err
	}
	for _, pt := range e.PriceHistory {
		if _, err := tx.Exec(
			"INSERT INTO price_history (product_id, price, observed_at) VALUES (?, ?, ?)",
			e.Product.ProductID, pt.Price, pt.Timestamp,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteEntry removes one favorite and its history.
func (db *DB) DeleteEntry(productID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM favorites WHERE product_id = ?", productID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM price_history WHERE product_id = ?", productID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteAll empties both favorites tables.
func (db *DB) DeleteAll() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM favorites"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM price_history"); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadAll reads every persisted favorite, history included, to warm the
// in-memory store at startup.
func (db *DB) LoadAll() ([]favorites.Entry, error) {
	rows, err := db.conn.Query(`
		SELECT product_id, product_json, added_at, initial_price, last_checked_price,
			price_changed, price_change_amount, price_change_percentage, notification_sent
		FROM favorites ORDER BY added_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []favorites.Entry
	for rows.Next() {
		var (
			e                      favorites.Entry
			productID, productJSON string
			changed, sent          int
		)
		if err := rows.Scan(&productID, &productJSON, &e.AddedAt, &e.InitialPrice, &e.LastCheckedPrice,
			&changed, &e.PriceChangeAmount, &e.PriceChangePercentage, &sent); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(productJSON), &e.Product); err != nil {
			return nil, fmt.Errorf("decode product %s: %w", productID, err)
		}
		e.PriceChanged = changed != 0
		e.NotificationSent = sent != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		history, err := db.loadHistory(entries[i].Product.ProductID)
		if err != nil {
			return nil, err
		}
		entries[i].PriceHistory = history
	}
	return entries, nil
}

func (db *DB) loadHistory(productID string) ([]models.PricePoint, error) {
	rows, err := db.conn.Query(
		"SELECT price, observed_at FROM price_history WHERE product_id = ? ORDER BY observed_at",
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var pt models.PricePoint
		var observed time.Time
		if err := rows.Scan(&pt.Price, &observed); err != nil {
			return nil, err
		}
		pt.Timestamp = observed
		points = append(points, pt)
	}
	return points, rows.Err()
}

// DeviceID returns the persisted device id, or "" when none exists yet.
func (db *DB) DeviceID() (string, error) {
	var id string
	err := db.conn.QueryRow("SELECT value FROM device WHERE key = 'device_id'").Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// SetDeviceID persists the device id.
func (db *DB) SetDeviceID(id string) error {
	_, err := db.conn.Exec(
		"INSERT INTO device (key, value) VALUES ('device_id', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		id)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
