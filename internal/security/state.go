// Package security tracks which verification tiers a user has already
// satisfied in the current session. Flags are set only by successful
// verification completions and are never reset automatically: once granted,
// a verification is reused for every later transfer in the session.
package security

import (
	"context"
	"time"
)

// State holds the per-user verification flags.
type State struct {
	DocumentVerified   bool       `json:"document_verified"`
	LivenessVerified   bool       `json:"liveness_verified"`
	LastDocumentUpload *time.Time `json:"last_document_upload,omitempty"`
	LastLivenessCheck  *time.Time `json:"last_liveness_check,omitempty"`
}

// Store persists verification state keyed by user email.
//
// Error Contract:
// - Get returns a zero State (not an error) for unknown users
// - Mark methods upsert and never fail on missing users
// - Infrastructure failures are returned wrapped with context
type Store interface {
	Get(ctx context.Context, email string) (State, error)
	MarkDocumentVerified(ctx context.Context, email string, at time.Time) error
	MarkLivenessVerified(ctx context.Context, email string, at time.Time) error
}
