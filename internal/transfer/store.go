package transfer

import (
	"context"
	"time"
)

// Store persists submitted transactions.
//
// Error Contract:
// - MarkCompleted returns ErrNotFound (wrapped) for unknown transaction IDs
// - ListByEmail returns transactions newest-first, empty slice when none
type Store interface {
	Create(ctx context.Context, txn Transaction) error
	MarkCompleted(ctx context.Context, id string, at time.Time) error
	ListByEmail(ctx context.Context, email string) ([]Transaction, error)
}
