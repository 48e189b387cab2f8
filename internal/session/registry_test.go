// ABOUTME: Tests for the session registry.
// ABOUTME: Validates creation, transitions, timestamp refresh, eviction, and concurrency.

package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry(nil)

	s, isNew := r.GetOrCreate("conv-1")
	assert.True(t, isNew)
	assert.Equal(t, StateMenu, s.State)
	assert.Equal(t, "conv-1", s.ConversationID)
	assert.False(t, s.LastInteractionAt.IsZero())

	again, isNew := r.GetOrCreate("conv-1")
	assert.False(t, isNew)
	assert.Equal(t, s.State, again.State)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Transition(t *testing.T) {
	r := NewRegistry(nil)
	r.GetOrCreate("conv-1")

	r.Transition("conv-1", StateWaitingPayment)

	s, ok := r.Get("conv-1")
	require.True(t, ok)
	assert.Equal(t, StateWaitingPayment, s.State)
}

func TestRegistry_Transition_CreatesIfAbsent(t *testing.T) {
	r := NewRegistry(nil)

	r.Transition("never-seen", StateHumanSupport)

	s, ok := r.Get("never-seen")
	require.True(t, ok)
	assert.Equal(t, StateHumanSupport, s.State)
}

func TestRegistry_Transition_RefreshesTimestamp(t *testing.T) {
	r := NewRegistry(nil)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	r.now = func() time.Time { return base }
	r.GetOrCreate("conv-1")

	r.now = func() time.Time { return base.Add(time.Hour) }
	r.Transition("conv-1", StateMenu)

	s, _ := r.Get("conv-1")
	assert.Equal(t, base.Add(time.Hour), s.LastInteractionAt)
}

func TestRegistry_Touch(t *testing.T) {
	r := NewRegistry(nil)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	r.now = func() time.Time { return base }
	r.GetOrCreate("conv-1")
	r.Transition("conv-1", StateWaitingConfirmation)

	r.now = func() time.Time { return base.Add(time.Hour) }
	r.Touch("conv-1")

	s, _ := r.Get("conv-1")
	assert.Equal(t, StateWaitingConfirmation, s.State, "touch must not change state")
	assert.Equal(t, base.Add(time.Hour), s.LastInteractionAt)

	// Touching an unknown id is a no-op.
	r.Touch("unknown")
	_, ok := r.Get("unknown")
	assert.False(t, ok)
}

func TestRegistry_EvictInactive(t *testing.T) {
	r := NewRegistry(nil)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	r.now = func() time.Time { return now.Add(-25 * time.Hour) }
	r.GetOrCreate("stale")

	r.now = func() time.Time { return now.Add(-23 * time.Hour) }
	r.GetOrCreate("fresh")

	r.now = func() time.Time { return now }
	evicted := r.EvictInactive(24 * time.Hour)

	assert.Equal(t, 1, evicted)
	_, ok := r.Get("stale")
	assert.False(t, ok, "25h-old session must be evicted by a 24h horizon")
	_, ok = r.Get("fresh")
	assert.True(t, ok, "23h-old session must survive a 24h horizon")
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry(nil)

	const numGoroutines = 100
	var created int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("conv-%d", i%10)
			if _, isNew := r.GetOrCreate(id); isNew {
				mu.Lock()
				created++
				mu.Unlock()
			}
			r.Transition(id, StateMenu)
			r.Touch(id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(10), created, "each conversation id must report isNew exactly once")
	assert.Equal(t, 10, r.Len())
}
