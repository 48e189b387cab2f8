// ABOUTME: Thread-safe once-per-calendar-day set for suppressing redundant writes.
// ABOUTME: Used by the router so each number is persisted at most once per local day.

package dailyset

import (
	"sync"
	"time"
)

// Set tracks which keys have already been touched during the current local
// calendar day. A key appears at most once in the set until the set rolls
// over at local midnight. Rollover happens lazily on access, so correctness
// does not depend on the maintenance scheduler; the scheduled Clear only
// reclaims memory promptly.
type Set struct {
	mu   sync.Mutex
	day  string // local calendar day the entries belong to, "2006-01-02"
	seen map[string]struct{}

	// now is swappable in tests
	now func() time.Time
}

// New creates an empty Set.
func New() *Set {
	return &Set{
		seen: make(map[string]struct{}),
		now:  time.Now,
	}
}

// MarkOnce records that key was touched today. It returns true if this is the
// first touch of the key during the current local day, false otherwise.
func (s *Set) MarkOnce(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rolloverLocked()

	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Contains reports whether key has been touched during the current local day.
func (s *Set) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rolloverLocked()

	_, ok := s.seen[key]
	return ok
}

// Len returns the number of keys touched during the current local day.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rolloverLocked()
	return len(s.seen)
}

// Clear drops all entries regardless of day. Called by the maintenance
// scheduler at day rollover.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seen = make(map[string]struct{})
	s.day = s.localDay()
}

// rolloverLocked resets the set when the local calendar day has changed.
// Must be called with mu held.
func (s *Set) rolloverLocked() {
	today := s.localDay()
	if s.day != today {
		s.seen = make(map[string]struct{})
		s.day = today
	}
}

func (s *Set) localDay() string {
	return s.now().Local().Format("2006-01-02")
}
