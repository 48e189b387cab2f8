// ABOUTME: Tests for the asynchronous registration persister
// ABOUTME: Covers draining, overflow dropping, and store failure isolation

package router

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mundonet/dexbot/internal/phone"
	"github.com/mundonet/dexbot/internal/store"
)

func TestPersisterDrainsJobs(t *testing.T) {
	ms := store.NewMockStore()
	p := NewPersister(ms, 8, slog.New(slog.DiscardHandler))
	p.Start()

	assert.True(t, p.Enqueue(UpsertJob{Name: "Ana", Number: "+258845551234", Tag: phone.TagDomestic}))
	assert.True(t, p.Enqueue(UpsertJob{Name: "Bento", Number: "+258855551234", Tag: phone.TagDomestic}))
	p.Close()

	assert.Equal(t, 2, ms.Count())
	c, err := ms.GetByNumber(context.Background(), "+258845551234")
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.Name)
}

func TestPersisterDropsWhenFull(t *testing.T) {
	ms := store.NewMockStore()
	// Never started, so the queue only holds capacity.
	p := NewPersister(ms, 2, slog.New(slog.DiscardHandler))

	assert.True(t, p.Enqueue(UpsertJob{Number: "+258845550001"}))
	assert.True(t, p.Enqueue(UpsertJob{Number: "+258845550002"}))
	assert.False(t, p.Enqueue(UpsertJob{Number: "+258845550003"}))
}

func TestPersisterDropsJobsAfterClose(t *testing.T) {
	ms := store.NewMockStore()
	p := NewPersister(ms, 8, slog.New(slog.DiscardHandler))
	p.Start()
	p.Close()

	// A message still in flight during shutdown drops its job quietly.
	assert.NotPanics(t, func() {
		assert.False(t, p.Enqueue(UpsertJob{Name: "Ana", Number: "+258845551234", Tag: phone.TagDomestic}))
	})
	assert.Equal(t, 0, ms.Count())
}

func TestPersisterSurvivesStoreFailure(t *testing.T) {
	ms := store.NewMockStore()
	ms.FailWith = store.ErrUnavailable
	p := NewPersister(ms, 8, slog.New(slog.DiscardHandler))
	p.Start()

	assert.True(t, p.Enqueue(UpsertJob{Name: "Ana", Number: "+258845551234", Tag: phone.TagDomestic}))
	p.Close()

	assert.Equal(t, 0, ms.Count())
}
