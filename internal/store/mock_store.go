// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mundonet/dexbot/internal/phone"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu        sync.RWMutex
	customers map[string]*Customer // keyed by canonical phone number

	// Now is swappable so tests can pin the clock.
	Now func() time.Time

	// FailWith, when set, makes every operation return that error.
	FailWith error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		customers: make(map[string]*Customer),
		Now:       time.Now,
	}
}

// Upsert stores or updates a customer record.
func (m *MockStore) Upsert(ctx context.Context, name, canonicalNumber string, tag phone.CountryTag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}

	now := m.Now()
	if existing, ok := m.customers[canonicalNumber]; ok {
		existing.Name = name
		if now.After(existing.LastUpdatedAt) {
			existing.LastUpdatedAt = now
		}
		return nil
	}

	m.customers[canonicalNumber] = &Customer{
		ID:            uuid.New().String(),
		Name:          name,
		PhoneNumber:   canonicalNumber,
		CountryTag:    tag,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	return nil
}

// GetByNumber retrieves a customer by canonical number.
func (m *MockStore) GetByNumber(ctx context.Context, canonicalNumber string) (*Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}

	c, ok := m.customers[canonicalNumber]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy
	result := *c
	return &result, nil
}

// QueryByRecency returns matching customers, newest first.
func (m *MockStore) QueryByRecency(ctx context.Context, window Window) ([]*Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}

	now := m.Now()
	result := []*Customer{}
	for _, c := range m.customers {
		if window.Matches(DayDiff(now, c.CreatedAt)) {
			copied := *c
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

// Count returns the number of stored customers.
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.customers)
}

// Ensure MockStore implements Store interface
var _ Store = (*MockStore)(nil)
