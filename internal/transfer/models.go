// Package transfer drives the money-transfer workflow: contact selection,
// amount entry, the tiered verification gate, confirmation and submission.
package transfer

import (
	"time"

	"vaultpay/internal/contacts"
)

// State is the workflow position for one user's in-progress transfer.
type State int

const (
	StateSelectingContact State = iota
	StateEnteringAmount
	StateAwaitingDocument
	StateAwaitingLiveness
	StateConfirming
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateSelectingContact:
		return "selecting_contact"
	case StateEnteringAmount:
		return "entering_amount"
	case StateAwaitingDocument:
		return "awaiting_document_verification"
	case StateAwaitingLiveness:
		return "awaiting_liveness_verification"
	case StateConfirming:
		return "confirming"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Intent is the transfer being assembled. Amounts are minor units (cents).
type Intent struct {
	Amount      int64            `json:"amount"`
	Description string           `json:"description"`
	Recipient   contacts.Contact `json:"recipient"`
}

// Status of a submitted transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Transaction is a submitted transfer. It starts pending and is flipped to
// completed by the settlement worker.
type Transaction struct {
	ID          string           `json:"id"`
	Email       string           `json:"email"`
	Recipient   contacts.Contact `json:"recipient"`
	Amount      int64            `json:"amount"`
	Description string           `json:"description"`
	Status      Status           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	SettledAt   *time.Time       `json:"settled_at,omitempty"`
}

// Snapshot is a read-only view of a workflow for status responses.
type Snapshot struct {
	State   State   `json:"-"`
	Intent  *Intent `json:"intent,omitempty"`
	Pending *Intent `json:"pending,omitempty"`
}
