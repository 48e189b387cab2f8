// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides customer persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mundonet/dexbot/internal/phone"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger

	// now is swappable in tests
	now func() time.Time
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	// The pragmas ride on the DSN so every pooled connection gets them: WAL
	// for concurrent readers, and a busy timeout so writers wait instead of
	// failing when the database is briefly locked.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS customers (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			phone_number    TEXT NOT NULL UNIQUE,
			country_tag     TEXT NOT NULL,
			created_at      TEXT NOT NULL,
			last_updated_at TEXT NOT NULL,

			CHECK (country_tag IN ('DOMESTIC', 'INTERNATIONAL'))
		);

		CREATE INDEX IF NOT EXISTS idx_customers_created_at
			ON customers(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Upsert inserts a new customer record or updates name/last_updated_at of an
// existing one. created_at is never touched on conflict, and last_updated_at
// only moves forward (RFC3339 UTC strings compare chronologically).
func (s *SQLiteStore) Upsert(ctx context.Context, name, canonicalNumber string, tag phone.CountryTag) error {
	now := s.now().UTC().Format(time.RFC3339)

	query := `
		INSERT INTO customers (id, name, phone_number, country_tag, created_at, last_updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(phone_number) DO UPDATE SET
			name = excluded.name,
			last_updated_at = MAX(last_updated_at, excluded.last_updated_at)
	`

	_, err := s.db.ExecContext(ctx, query,
		uuid.New().String(),
		name,
		canonicalNumber,
		string(tag),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("%w: upserting customer: %v", ErrUnavailable, err)
	}

	s.logger.Debug("upserted customer", "number", canonicalNumber, "name", name)
	return nil
}

// GetByNumber retrieves a customer by canonical number.
// Returns ErrNotFound if no record exists.
func (s *SQLiteStore) GetByNumber(ctx context.Context, canonicalNumber string) (*Customer, error) {
	query := `
		SELECT id, name, phone_number, country_tag, created_at, last_updated_at
		FROM customers
		WHERE phone_number = ?
	`

	row := s.db.QueryRowContext(ctx, query, canonicalNumber)
	c, err := scanCustomer(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying customer: %v", ErrUnavailable, err)
	}
	return c, nil
}

// QueryByRecency returns the customers whose created_at falls inside the
// window, newest first. The calendar-day filter runs in Go so the boundary
// semantics stay in one place (see DayDiff). Rows with unparseable dates are
// logged and skipped rather than failing the whole query.
func (s *SQLiteStore) QueryByRecency(ctx context.Context, window Window) ([]*Customer, error) {
	query := `
		SELECT id, name, phone_number, country_tag, created_at, last_updated_at
		FROM customers
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying customers: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	now := s.now()
	customers := []*Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows.Scan)
		if err != nil {
			s.logger.Warn("skipping corrupt customer row", "error", err)
			continue
		}
		if window.Matches(DayDiff(now, c.CreatedAt)) {
			customers = append(customers, c)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating customer rows: %v", ErrUnavailable, err)
	}

	return customers, nil
}

// scanCustomer scans one customer row via the given Scan function.
func scanCustomer(scan func(dest ...any) error) (*Customer, error) {
	var c Customer
	var tag, createdAtStr, updatedAtStr string

	if err := scan(&c.ID, &c.Name, &c.PhoneNumber, &tag, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}

	c.CountryTag = phone.CountryTag(tag)

	var err error
	c.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	c.LastUpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing last_updated_at: %w", err)
	}

	return &c, nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
