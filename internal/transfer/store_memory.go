package transfer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"vaultpay/pkg/platform/sentinel"
)

// InMemoryStore keeps transactions per sender.
type InMemoryStore struct {
	mu   sync.RWMutex
	txns map[string]Transaction
}

func NewMemoryStore() *InMemoryStore {
	return &InMemoryStore{txns: make(map[string]Transaction)}
}

func (s *InMemoryStore) Create(_ context.Context, txn Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.txns[txn.ID]; exists {
		return fmt.Errorf("transaction %s: %w", txn.ID, sentinel.ErrConflict)
	}
	s.txns[txn.ID] = txn
	return nil
}

func (s *InMemoryStore) MarkCompleted(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, exists := s.txns[id]
	if !exists {
		return fmt.Errorf("transaction %s: %w", id, sentinel.ErrNotFound)
	}
	txn.Status = StatusCompleted
	txn.SettledAt = &at
	s.txns[id] = txn
	return nil
}

func (s *InMemoryStore) ListByEmail(_ context.Context, email string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Transaction, 0)
	for _, txn := range s.txns {
		if txn.Email == email {
			result = append(result, txn)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Get returns a transaction by ID.
func (s *InMemoryStore) Get(_ context.Context, id string) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txn, exists := s.txns[id]
	if !exists {
		return Transaction{}, fmt.Errorf("transaction %s: %w", id, sentinel.ErrNotFound)
	}
	return txn, nil
}
