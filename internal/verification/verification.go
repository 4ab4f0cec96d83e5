// Package verification defines the shared contract for verification
// capabilities. A capability wraps a single verification flow and resolves
// with exactly one terminal outcome per attempt.
package verification

import "context"

// Outcome is the terminal result of one verification attempt.
type Outcome int

const (
	// OutcomeCompleted means the verification succeeded and was confirmed;
	// the caller may set the corresponding security flag.
	OutcomeCompleted Outcome = iota
	// OutcomeCancelled means the user abandoned the attempt.
	OutcomeCancelled
	// OutcomeFailed means the attempt failed; the accompanying error says why.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// Capability runs one verification attempt for the given subject (user email).
// Cancelling ctx aborts the attempt and yields OutcomeCancelled. The error is
// non-nil only for OutcomeFailed and explains the failure; it is safe to
// surface to the user.
type Capability interface {
	Verify(ctx context.Context, subject string) (Outcome, error)
}
