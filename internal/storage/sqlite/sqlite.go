// Package sqlite provides a SQLite-backed implementation of the storage.Store
// interface. Integrity rules live in the schema: foreign keys with
// CASCADE/SET NULL, unique indexes, and CHECK constraints all fire inside the
// engine, so a violating write aborts atomically with no partial effect.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/moneymatters/backend/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// timeLayout pads fractional seconds to full width. RFC3339Nano strips
// trailing zeros, which breaks lexicographic ordering inside a second
// ("12:00:00Z" > "12:00:00.5Z" because 'Z' > '.'); the fixed width keeps
// TEXT comparisons chronological for every ORDER BY and range filter.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock overrides the store's time source. Tests use this to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = func() time.Time { return now().UTC() }
	}
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string, opts ...Option) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Constraint enforcement depends on this pragma; without it the cascade
	// and nullify rules in the schema are inert.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &SQLiteStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// touch returns the timestamp for a mutation, strictly after createdAt so
// UpdatedAt > CreatedAt holds even when the clock reads the same instant.
func (s *SQLiteStore) touch(createdAt time.Time) time.Time {
	now := s.now()
	if !now.After(createdAt) {
		now = createdAt.Add(time.Nanosecond)
	}
	return now
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// --- value conversion helpers ---

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func parseTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// formatMoney fixes the scale at two fractional digits on every write.
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatMoneyPtr(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return formatMoney(*d)
}

func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed decimal %q: %w", s, err)
	}
	return d, nil
}

func parseMoneyPtr(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := parseMoney(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatUUIDPtr(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed id %q: %w", s, err)
	}
	return id, nil
}

func parseUUIDPtr(ns sql.NullString) (*uuid.UUID, error) {
	if !ns.Valid {
		return nil, nil
	}
	id, err := parseUUID(ns.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtrValue(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullIntPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

// Counts returns per-table row counts.
func (s *SQLiteStore) Counts(ctx context.Context) (storage.Counts, error) {
	var c storage.Counts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"users", &c.Users},
		{"accounts", &c.Accounts},
		{"transactions", &c.Transactions},
		{"bills", &c.Bills},
		{"income_streams", &c.IncomeStreams},
		{"goals", &c.Goals},
		{"goal_accounts", &c.GoalAccounts},
		{"alerts", &c.Alerts},
		{"forecast_snapshots", &c.ForecastSnapshots},
		{"settings", &c.Settings},
	} {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+q.table).Scan(q.dst); err != nil {
			return storage.Counts{}, fmt.Errorf("failed to count %s: %w", q.table, err)
		}
	}
	return c, nil
}
