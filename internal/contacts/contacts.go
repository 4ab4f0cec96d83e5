// Package contacts holds the transfer recipient directory.
package contacts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"vaultpay/pkg/platform/sentinel"
)

// Contact is a transfer recipient.
type Contact struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	AccountNumber string `json:"account_number"`
}

// Store looks up transfer recipients.
//
// Error Contract:
// - FindByID returns ErrNotFound (wrapped) for unknown contacts
// - Search with an empty query returns all contacts
type Store interface {
	FindByID(ctx context.Context, id string) (Contact, error)
	Search(ctx context.Context, query string) ([]Contact, error)
}

// InMemoryStore serves a fixed contact list for the demo deployment.
type InMemoryStore struct {
	mu       sync.RWMutex
	contacts []Contact
}

// NewMemory constructs a store holding the given contacts.
func NewMemory(contacts []Contact) *InMemoryStore {
	return &InMemoryStore{contacts: contacts}
}

// Seed returns the demo contact directory.
func Seed() []Contact {
	return []Contact{
		{ID: "1", Name: "John Smith", Email: "john@example.com", AccountNumber: "1234567890"},
		{ID: "2", Name: "Sarah Johnson", Email: "sarah@example.com", AccountNumber: "0987654321"},
		{ID: "3", Name: "Mike Davis", Email: "mike@example.com", AccountNumber: "1122334455"},
		{ID: "4", Name: "Emily Chen", Email: "emily@example.com", AccountNumber: "5566778899"},
		{ID: "5", Name: "David Wilson", Email: "david@example.com", AccountNumber: "9988776655"},
	}
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return Contact{}, fmt.Errorf("contact %s: %w", id, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Search(_ context.Context, query string) ([]Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == "" {
		out := make([]Contact, len(s.contacts))
		copy(out, s.contacts)
		return out, nil
	}

	needle := strings.ToLower(query)
	var out []Contact
	for _, c := range s.contacts {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out, nil
}
