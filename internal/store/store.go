// ABOUTME: Store interface and data types for the customer registry
// ABOUTME: Defines the Customer record and the Store interface for persistence

package store

import (
	"context"
	"errors"
	"time"

	"github.com/mundonet/dexbot/internal/phone"
)

// ErrNotFound is returned when a requested customer does not exist
var ErrNotFound = errors.New("not found")

// ErrUnavailable is returned when the backing store cannot serve a request.
// Callers degrade reads to "no data" rather than failing the conversation.
var ErrUnavailable = errors.New("store unavailable")

// Customer represents one registered customer, keyed by canonical phone number.
// Exactly one record exists per canonical number; re-registration updates Name
// and LastUpdatedAt but never CreatedAt.
type Customer struct {
	ID            string
	Name          string
	PhoneNumber   string // canonical +E.164-like form
	CountryTag    phone.CountryTag
	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

// Store defines the interface for customer registry persistence
type Store interface {
	// Upsert inserts a new customer or updates name/last_updated_at of an
	// existing one, keyed by canonical number. Safe for concurrent callers;
	// concurrent upserts for the same number are last-writer-wins on name
	// with a monotonic last_updated_at.
	Upsert(ctx context.Context, name, canonicalNumber string, tag phone.CountryTag) error

	// GetByNumber retrieves a customer by canonical number.
	// Returns ErrNotFound if no record exists.
	GetByNumber(ctx context.Context, canonicalNumber string) (*Customer, error)

	// QueryByRecency returns customers whose registration date falls inside
	// the window, newest first. A corrupt backing store yields an empty
	// slice, not an error.
	QueryByRecency(ctx context.Context, window Window) ([]*Customer, error)

	// Close releases any resources held by the store
	Close() error
}
