// ABOUTME: In-memory conversation session registry with lifecycle management
// ABOUTME: Owns all sessions: create, transition, timestamp refresh, and eviction

package session

import (
	"log/slog"
	"sync"
	"time"
)

// State tags a conversation's position in the support flow.
type State string

const (
	StateMenu                State = "MENU"
	StateWaitingPayment      State = "WAITING_PAYMENT"
	StateWaitingConfirmation State = "WAITING_CONFIRMATION"
	StateHumanSupport        State = "HUMAN_SUPPORT"
	StateActive              State = "ACTIVE"
)

// Session is one conversation's state. Sessions are owned exclusively by the
// Registry; callers receive copies and never hold references across calls.
type Session struct {
	ConversationID    string
	State             State
	LastInteractionAt time.Time
}

// Registry maps conversation ids to sessions. All mutation happens under the
// registry lock, and sessions are stored and returned by value, so a single
// conversation's updates are linearizable. No ordering is guaranteed across
// concurrent messages from the same conversation.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	logger   *slog.Logger

	// now is swappable in tests
	now func() time.Time
}

// NewRegistry creates an empty Registry. A nil logger falls back to slog.Default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions: make(map[string]Session),
		logger:   logger.With("component", "session"),
		now:      time.Now,
	}
}

// GetOrCreate returns the session for the conversation id, creating it in
// MENU if it has never been seen. The second return value reports whether
// this call created the session.
func (r *Registry) GetOrCreate(conversationID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[conversationID]; ok {
		return s, false
	}

	s := Session{
		ConversationID:    conversationID,
		State:             StateMenu,
		LastInteractionAt: r.now(),
	}
	r.sessions[conversationID] = s
	r.logger.Debug("session created", "conversation_id", conversationID)
	return s, true
}

// Get returns the session for the conversation id, if present.
func (r *Registry) Get(conversationID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[conversationID]
	return s, ok
}

// Transition sets the conversation's state and refreshes its interaction
// timestamp, creating the session if absent. The whole session value is
// replaced in one assignment; there is no partial mutation to observe.
func (r *Registry) Transition(conversationID string, newState State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[conversationID] = Session{
		ConversationID:    conversationID,
		State:             newState,
		LastInteractionAt: r.now(),
	}
}

// Touch refreshes the conversation's interaction timestamp without changing
// state. A no-op for unknown conversation ids.
func (r *Registry) Touch(conversationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[conversationID]
	if !ok {
		return
	}
	s.LastInteractionAt = r.now()
	r.sessions[conversationID] = s
}

// EvictInactive removes every session whose last interaction is older than
// the horizon and returns the number evicted. Called periodically by the
// maintenance scheduler.
func (r *Registry) EvictInactive(horizon time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-horizon)
	evicted := 0
	for id, s := range r.sessions {
		if s.LastInteractionAt.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		r.logger.Info("evicted inactive sessions", "count", evicted, "horizon", horizon)
	}
	return evicted
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
