// ABOUTME: Tests for the SQLite customer store.
// ABOUTME: Validates upsert uniqueness, created_at stability, and recency queries.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mundonet/dexbot/internal/phone"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "customers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_UpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Upsert(ctx, "Maria", "+258845551234", phone.TagDomestic)
	require.NoError(t, err)

	c, err := s.GetByNumber(ctx, "+258845551234")
	require.NoError(t, err)
	assert.Equal(t, "Maria", c.Name)
	assert.Equal(t, "+258845551234", c.PhoneNumber)
	assert.Equal(t, phone.TagDomestic, c.CountryTag)
	assert.False(t, c.CreatedAt.IsZero())
	assert.NotEmpty(t, c.ID)
}

func TestSQLiteStore_GetByNumber_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetByNumber(context.Background(), "+258845559999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_Upsert_SameNumberTwice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.Upsert(ctx, "Maria", "+258845551234", phone.TagDomestic))

	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	require.NoError(t, s.Upsert(ctx, "Maria Jose", "+258845551234", phone.TagDomestic))

	// Exactly one record: the later name, the original created_at.
	all, err := s.QueryByRecency(ctx, WindowAll)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Maria Jose", all[0].Name)
	assert.Equal(t, base, all[0].CreatedAt.UTC())
	assert.Equal(t, base.Add(2*time.Hour), all[0].LastUpdatedAt.UTC())
}

func TestSQLiteStore_Upsert_LastUpdatedMonotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base.Add(time.Hour) }
	require.NoError(t, s.Upsert(ctx, "Maria", "+258845551234", phone.TagDomestic))

	// A write with an earlier clock must not move last_updated_at backwards.
	s.now = func() time.Time { return base }
	require.NoError(t, s.Upsert(ctx, "Maria", "+258845551234", phone.TagDomestic))

	c, err := s.GetByNumber(ctx, "+258845551234")
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Hour), c.LastUpdatedAt.UTC())
}

func TestSQLiteStore_QueryByRecency(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	insertAt := func(name, number string, at time.Time) {
		s.now = func() time.Time { return at }
		require.NoError(t, s.Upsert(ctx, name, number, phone.TagDomestic))
	}

	insertAt("Hoje", "+258845550001", now)
	insertAt("Ontem", "+258845550002", now.AddDate(0, 0, -1))
	insertAt("Semana", "+258845550003", now.AddDate(0, 0, -5))
	insertAt("Antigo", "+258845550004", now.AddDate(0, 0, -60))

	s.now = func() time.Time { return now }

	today, err := s.QueryByRecency(ctx, WindowToday)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "Hoje", today[0].Name)

	yesterday, err := s.QueryByRecency(ctx, WindowYesterday)
	require.NoError(t, err)
	require.Len(t, yesterday, 1)
	assert.Equal(t, "Ontem", yesterday[0].Name)

	week, err := s.QueryByRecency(ctx, WindowLast7d)
	require.NoError(t, err)
	assert.Len(t, week, 3)

	all, err := s.QueryByRecency(ctx, WindowAll)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSQLiteStore_QueryByRecency_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	for i, number := range []string{"+258845550001", "+258845550002", "+258845550003"} {
		at := now.Add(-time.Duration(i) * time.Hour)
		s.now = func() time.Time { return at }
		require.NoError(t, s.Upsert(ctx, "C", number, phone.TagDomestic))
	}

	s.now = func() time.Time { return now }
	all, err := s.QueryByRecency(ctx, WindowAll)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt),
			"results must be ordered newest first")
	}
}

func TestSQLiteStore_QueryByRecency_Empty(t *testing.T) {
	s := newTestStore(t)

	all, err := s.QueryByRecency(context.Background(), WindowAll)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLiteStore_Upsert_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func(i int) {
			done <- s.Upsert(ctx, "Concorrente", "+258845551234", phone.TagDomestic)
		}(i)
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, <-done)
	}

	all, err := s.QueryByRecency(ctx, WindowAll)
	require.NoError(t, err)
	assert.Len(t, all, 1, "concurrent upserts for one number must not duplicate the record")
}
