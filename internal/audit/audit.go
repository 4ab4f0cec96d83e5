// Package audit captures key account and transfer actions for later review.
// Events flow from domain logic through a buffered channel into a Worker that
// persists them, so emitting never blocks the request path.
package audit

import (
	"context"
	"sync"
	"time"
)

// Action identifies what happened.
type Action string

const (
	ActionLogin                 Action = "login"
	ActionLoginFailed           Action = "login_failed"
	ActionTransferInitiated     Action = "transfer_initiated"
	ActionVerificationRequired  Action = "verification_required"
	ActionDocumentVerified      Action = "document_verified"
	ActionLivenessVerified      Action = "liveness_verified"
	ActionVerificationFailed    Action = "verification_failed"
	ActionVerificationCancelled Action = "verification_cancelled"
	ActionTransferSent          Action = "transfer_sent"
	ActionTransferSettled       Action = "transfer_settled"
	ActionTransferCancelled     Action = "transfer_cancelled"
)

// Event is emitted from domain logic. Keep it transport-agnostic so stores
// and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Email     string    `json:"email"`
	Action    Action    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEmail(ctx context.Context, email string) ([]Event, error)
}

// InMemoryStore keeps events per user for the demo deployment.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Email] = append(s.events[event.Email], event)
	return nil
}

func (s *InMemoryStore) ListByEmail(_ context.Context, email string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[email]...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string][]Event)
}
