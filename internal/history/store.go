// Package history keeps a local record of submitted orders so the customer's
// dashboard and the payment watcher survive restarts.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id    TEXT PRIMARY KEY,
	sub_court_id INTEGER NOT NULL,
	slot_keys   TEXT NOT NULL,
	amount      REAL NOT NULL,
	status      TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
`

// Order statuses as stored locally. StatusPending is what a fresh submission
// is recorded with; the confirmed value mirrors the configured terminal
// payment status, so it is not fixed here.
const StatusPending = "PENDING"

// OrderRecord is one submitted order.
type OrderRecord struct {
	OrderID    string
	SubCourtID int64
	SlotKeys   []string
	Amount     float64
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store is the sqlite-backed order history.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// RecordOrder inserts a freshly submitted order. An empty Status defaults to
// StatusPending.
func (s *Store) RecordOrder(ctx context.Context, rec OrderRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (order_id, sub_court_id, slot_keys, amount, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.OrderID, rec.SubCourtID, strings.Join(rec.SlotKeys, ","), rec.Amount, rec.Status, rec.CreatedAt, now,
	)
	if err != nil {
		return fmt.Errorf("record order %s: %w", rec.OrderID, err)
	}
	return nil
}

// UpdateStatus sets an order's status.
func (s *Store) UpdateStatus(ctx context.Context, orderID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?`,
		status, time.Now().UTC(), orderID,
	)
	if err != nil {
		return fmt.Errorf("update order %s: %w", orderID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s not found", orderID)
	}
	return nil
}

// GetOrder returns a single order by id.
func (s *Store) GetOrder(ctx context.Context, orderID string) (OrderRecord, error) {
	recs, err := s.query(ctx,
		`SELECT order_id, sub_court_id, slot_keys, amount, status, created_at, updated_at
		 FROM orders WHERE order_id = ?`, orderID)
	if err != nil {
		return OrderRecord{}, err
	}
	if len(recs) == 0 {
		return OrderRecord{}, fmt.Errorf("order %s not found", orderID)
	}
	return recs[0], nil
}

// PendingOrders returns orders still awaiting payment confirmation.
func (s *Store) PendingOrders(ctx context.Context) ([]OrderRecord, error) {
	return s.query(ctx,
		`SELECT order_id, sub_court_id, slot_keys, amount, status, created_at, updated_at
		 FROM orders WHERE status = ? ORDER BY created_at`, StatusPending)
}

// ListOrders returns the full history, newest first.
func (s *Store) ListOrders(ctx context.Context) ([]OrderRecord, error) {
	return s.query(ctx,
		`SELECT order_id, sub_court_id, slot_keys, amount, status, created_at, updated_at
		 FROM orders ORDER BY created_at DESC`)
}

// DeleteOrder removes an order from the local history.
func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE order_id = ?`, orderID)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", orderID, err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]OrderRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		var rec OrderRecord
		var keys string
		if err := rows.Scan(&rec.OrderID, &rec.SubCourtID, &keys, &rec.Amount, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if keys != "" {
			rec.SlotKeys = strings.Split(keys, ",")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
