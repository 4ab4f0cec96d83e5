// Package account holds demo user accounts: identity, PIN credential, and the
// displayed balance the transfer workflow validates against.
package account

import (
	"context"
	"fmt"
	"sync"

	"vaultpay/pkg/platform/sentinel"
)

// Account is a demo banking user. Balance is minor units (cents).
type Account struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	AccountNumber string `json:"account_number"`
	PINHash       string `json:"-"` // never serialize, bcrypt hash
	Balance       int64  `json:"balance"`
}

// Store persists accounts and their displayed balances.
//
// Error Contract:
// - FindByEmail returns ErrNotFound (wrapped) for unknown accounts
// - Debit returns ErrInvalidState (wrapped) when it would overdraw
type Store interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	Balance(ctx context.Context, email string) (int64, error)
	Debit(ctx context.Context, email string, amount int64) error
	Credit(ctx context.Context, email string, amount int64) error
}

// InMemoryStore keeps accounts in memory for the demo deployment.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemory constructs a store holding the given accounts.
func NewMemory(accounts ...Account) *InMemoryStore {
	m := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		m[a.Email] = a
	}
	return &InMemoryStore{accounts: m}
}

// SeedAccount returns the demo user with the given PIN hash.
func SeedAccount(pinHash string) Account {
	return Account{
		Name:          "Alex Thompson",
		Email:         "alex@example.com",
		AccountNumber: "1111222233",
		PINHash:       pinHash,
		Balance:       1_090_050_000, // 10,900,500.00
	}
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[email]
	if !ok {
		return Account{}, fmt.Errorf("account %s: %w", email, sentinel.ErrNotFound)
	}
	return a, nil
}

func (s *InMemoryStore) Balance(_ context.Context, email string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[email]
	if !ok {
		return 0, fmt.Errorf("account %s: %w", email, sentinel.ErrNotFound)
	}
	return a.Balance, nil
}

func (s *InMemoryStore) Debit(_ context.Context, email string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	if !ok {
		return fmt.Errorf("account %s: %w", email, sentinel.ErrNotFound)
	}
	if a.Balance < amount {
		return fmt.Errorf("balance %d below %d: %w", a.Balance, amount, sentinel.ErrInvalidState)
	}
	a.Balance -= amount
	s.accounts[email] = a
	return nil
}

func (s *InMemoryStore) Credit(_ context.Context, email string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	if !ok {
		return fmt.Errorf("account %s: %w", email, sentinel.ErrNotFound)
	}
	a.Balance += amount
	s.accounts[email] = a
	return nil
}
