package security

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps verification state in memory for tests/dev and for the
// single-process demo deployment.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewMemory constructs an empty in-memory verification-state store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]State)}
}

func (s *InMemoryStore) Get(_ context.Context, email string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[email], nil
}

func (s *InMemoryStore) MarkDocumentVerified(_ context.Context, email string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[email]
	st.DocumentVerified = true
	st.LastDocumentUpload = &at
	s.states[email] = st
	return nil
}

func (s *InMemoryStore) MarkLivenessVerified(_ context.Context, email string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[email]
	st.LivenessVerified = true
	st.LastLivenessCheck = &at
	s.states[email] = st
	return nil
}
