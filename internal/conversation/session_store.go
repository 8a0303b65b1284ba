package conversation

import (
	"context"
	"sync"
	"time"
)

const defaultSessionTTL = 30 * time.Minute

// State is the transient dialogue state of one chat session.
type State struct {
	SessionID    string    `json:"session_id"`
	PendingSlots Slots     `json:"pending_slots"`
	TurnCount    int       `json:"turn_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// SessionStore persists conversation state between turns. Load reports
// found=false for unknown or expired sessions.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (State, bool, error)
	Save(ctx context.Context, state State) error
	Delete(ctx context.Context, sessionID string) error
}

// MemorySessionStore keeps sessions in process. Idle sessions expire when
// loaded, and every new session sweeps the expired ones.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]State
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore returns a store with the given idle TTL; ttl <= 0
// selects 30 minutes.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &MemorySessionStore{
		sessions: make(map[string]State),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Load(_ context.Context, sessionID string) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return State{}, false, nil
	}
	if s.now().Sub(state.LastActivity) > s.ttl {
		delete(s.sessions, sessionID)
		return State{}, false, nil
	}
	return state, true, nil
}

func (s *MemorySessionStore) Save(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[state.SessionID]; !ok {
		s.sweep(s.now())
	}
	s.sessions[state.SessionID] = state
	return nil
}

func (s *MemorySessionStore) sweep(now time.Time) {
	for id, state := range s.sessions {
		if now.Sub(state.LastActivity) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
