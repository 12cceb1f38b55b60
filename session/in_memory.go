package session

import (
	"sort"
	"sync"

	"github.com/hupe1980/reagent/core"
)

// Store hands out conversation histories keyed by session ID.
type Store interface {
	// GetOrCreate returns the session's conversation, creating an empty one
	// on first use.
	GetOrCreate(sessionID string) (*core.Conversation, error)
	// Get returns the session's conversation, or false when absent.
	Get(sessionID string) (*core.Conversation, bool)
	// Delete discards a session. Deleting an absent session is a no-op.
	Delete(sessionID string)
	// IDs lists the stored session ids, sorted.
	IDs() []string
}

// InMemoryStore is a volatile Store keeping conversations in a process-local
// map. It hands out live pointers on purpose: a continuation agent appends
// to the very conversation the store holds, so the next run over the same
// session sees the new turns without an explicit save step. Conversations
// guard their own state; the store only guards the map.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Conversation
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Conversation)}
}

// GetOrCreate returns the live conversation for sessionID, creating an empty
// one on first use.
func (s *InMemoryStore) GetOrCreate(sessionID string) (*core.Conversation, error) {
	s.mu.RLock()
	conv, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return conv, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.sessions[sessionID]; ok {
		return conv, nil
	}
	conv = core.NewConversation()
	s.sessions[sessionID] = conv
	return conv, nil
}

// Get returns the live conversation for sessionID, or false when absent.
func (s *InMemoryStore) Get(sessionID string) (*core.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.sessions[sessionID]
	return conv, ok
}

// Delete discards a session.
func (s *InMemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// IDs lists the stored session ids, sorted for deterministic output.
func (s *InMemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
