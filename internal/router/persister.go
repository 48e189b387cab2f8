// ABOUTME: Bounded asynchronous writer for customer registrations
// ABOUTME: Keeps store latency and failures off the conversation path

package router

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mundonet/dexbot/internal/phone"
	"github.com/mundonet/dexbot/internal/store"
)

const defaultQueueSize = 256

// upsertTimeout bounds one registry write.
const upsertTimeout = 5 * time.Second

// UpsertJob is one pending customer registration.
type UpsertJob struct {
	Name   string
	Number string // canonical form
	Tag    phone.CountryTag
}

// Persister drains registration jobs into the store on its own goroutine.
// Enqueue never blocks; when the queue is full the job is dropped and logged,
// keeping the conversation path independent of store health.
type Persister struct {
	store  store.Store
	jobs   chan UpsertJob
	logger *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	done      chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewPersister creates a Persister. queueSize <= 0 selects the default.
func NewPersister(st store.Store, queueSize int, logger *slog.Logger) *Persister {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Persister{
		store:  st,
		jobs:   make(chan UpsertJob, queueSize),
		logger: logger.With("component", "persister"),
		done:   make(chan struct{}),
	}
}

// Start launches the drain goroutine. Safe to call once.
func (p *Persister) Start() {
	p.startOnce.Do(func() {
		p.started = true
		go p.drain()
	})
}

// Enqueue queues a registration without blocking. Returns false when the job
// was dropped, either because the queue is full or the persister is closed.
// Messages can still be in flight during shutdown, so a late job must degrade
// to a drop, never a panic.
func (p *Persister) Enqueue(job UpsertJob) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.logger.Warn("persister closed, dropping job", "number", job.Number)
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		p.logger.Warn("registration queue full, dropping job", "number", job.Number)
		return false
	}
}

// Close stops accepting jobs, drains what is queued, and waits for the drain
// goroutine to exit.
func (p *Persister) Close() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
		if p.started {
			<-p.done
		}
	})
}

func (p *Persister) drain() {
	defer close(p.done)
	for job := range p.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), upsertTimeout)
		err := p.store.Upsert(ctx, job.Name, job.Number, job.Tag)
		cancel()
		if err != nil {
			p.logger.Error("customer upsert failed", "number", job.Number, "error", err)
			continue
		}
		p.logger.Debug("customer upserted", "number", job.Number)
	}
}
