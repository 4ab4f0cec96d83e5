package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"vaultpay/internal/contacts"
	"vaultpay/internal/policy"
	"vaultpay/internal/security"
	"vaultpay/internal/verification"
	"vaultpay/pkg/requestcontext"
)

var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInsufficientFunds    = errors.New("amount exceeds available balance")
	ErrVerificationRequired = errors.New("verification required before submission")
	ErrInvalidTransition    = errors.New("operation not allowed in current state")
)

// BalanceReader reports the sender's available balance.
type BalanceReader interface {
	Balance(ctx context.Context, email string) (int64, error)
}

// Capabilities holds one verification capability per gated tier.
type Capabilities struct {
	Document verification.Capability
	Liveness verification.Capability
}

// Workflow is the transfer state machine for a single user. All transitions
// run under the mutex; the mutex is released while a verification capability
// is in flight so Cancel and Snapshot stay responsive.
type Workflow struct {
	email    string
	balances BalanceReader
	security security.Store
	caps     Capabilities
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	intent  Intent
	pending *Intent
	// cancelVerify aborts the in-flight capability; set only while the state
	// is one of the Awaiting states.
	cancelVerify context.CancelFunc
	// verifySeq identifies the current verification attempt. A capability
	// call that returns after Cancel, once a newer attempt has started, must
	// not apply its outcome to the newer attempt's gate.
	verifySeq uint64
}

func NewWorkflow(email string, balances BalanceReader, securityStore security.Store, caps Capabilities, logger *slog.Logger) *Workflow {
	return &Workflow{
		email:    email,
		balances: balances,
		security: securityStore,
		caps:     caps,
		logger:   logger,
		state:    StateSelectingContact,
	}
}

// SelectRecipient starts a new transfer toward the given contact.
func (w *Workflow) SelectRecipient(_ context.Context, recipient contacts.Contact) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSelectingContact {
		return w.state, fmt.Errorf("select recipient in %s: %w", w.state, ErrInvalidTransition)
	}
	w.intent = Intent{Recipient: recipient}
	w.state = StateEnteringAmount
	return w.state, nil
}

// EnterAmount records the amount and description. Validation failures keep
// the workflow on the amount step.
func (w *Workflow) EnterAmount(ctx context.Context, amount int64, description string) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateEnteringAmount {
		return w.state, fmt.Errorf("enter amount in %s: %w", w.state, ErrInvalidTransition)
	}
	if amount <= 0 {
		return w.state, ErrInvalidAmount
	}
	balance, err := w.balances.Balance(ctx, w.email)
	if err != nil {
		return w.state, fmt.Errorf("read balance: %w", err)
	}
	if amount > balance {
		return w.state, ErrInsufficientFunds
	}

	w.intent.Amount = amount
	w.intent.Description = description
	return w.state, nil
}

// ContinueResult reports what Continue did.
type ContinueResult struct {
	State     State
	Tier      policy.Tier
	Gated     bool // a verification capability was invoked
	Cancelled bool // the invoked capability ended without a terminal outcome for this attempt
}

// Continue evaluates the security tier for the entered amount and either
// moves straight to confirmation or runs the required verification
// capability. A verification already granted this session is not re-run.
//
// On a completed verification the pending intent is restored and the workflow
// moves to Confirming. Cancellation or failure of the verification discards
// the pending snapshot and returns to the amount step; the error (nil for a
// plain cancellation) says why.
func (w *Workflow) Continue(ctx context.Context) (ContinueResult, error) {
	w.mu.Lock()

	if w.state != StateEnteringAmount || w.intent.Amount <= 0 {
		state := w.state
		w.mu.Unlock()
		return ContinueResult{State: state}, fmt.Errorf("continue in %s: %w", state, ErrInvalidTransition)
	}

	tier := policy.TierFor(w.intent.Amount)
	flags, err := w.security.Get(ctx, w.email)
	if err != nil {
		w.mu.Unlock()
		return ContinueResult{State: StateEnteringAmount, Tier: tier}, fmt.Errorf("read security state: %w", err)
	}

	var (
		capability verification.Capability
		gateState  State
	)
	switch {
	case tier == policy.TierLiveness && !flags.LivenessVerified:
		capability, gateState = w.caps.Liveness, StateAwaitingLiveness
	case tier == policy.TierDocument && !flags.DocumentVerified:
		capability, gateState = w.caps.Document, StateAwaitingDocument
	default:
		w.state = StateConfirming
		w.mu.Unlock()
		return ContinueResult{State: StateConfirming, Tier: tier}, nil
	}

	snapshot := w.intent
	w.pending = &snapshot
	w.state = gateState
	verifyCtx, cancel := context.WithCancel(ctx)
	w.cancelVerify = cancel
	w.verifySeq++
	attempt := w.verifySeq
	w.mu.Unlock()

	outcome, verifyErr := capability.Verify(verifyCtx, w.email)
	cancel()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.verifySeq != attempt || w.state != gateState {
		// Cancel won the race, or a newer attempt owns the workflow now.
		// This attempt's outcome no longer applies, and cancelVerify, if
		// set, belongs to the newer attempt.
		return ContinueResult{State: w.state, Tier: tier, Gated: true, Cancelled: true}, nil
	}
	w.cancelVerify = nil

	switch outcome {
	case verification.OutcomeCompleted:
		at := requestcontext.Now(ctx)
		var markErr error
		if gateState == StateAwaitingLiveness {
			markErr = w.security.MarkLivenessVerified(ctx, w.email, at)
		} else {
			markErr = w.security.MarkDocumentVerified(ctx, w.email, at)
		}
		if markErr != nil {
			w.pending = nil
			w.state = StateEnteringAmount
			return ContinueResult{State: w.state, Tier: tier, Gated: true}, fmt.Errorf("record verification: %w", markErr)
		}
		w.intent = *w.pending
		w.pending = nil
		w.state = StateConfirming
		return ContinueResult{State: w.state, Tier: tier, Gated: true}, nil

	case verification.OutcomeCancelled:
		w.pending = nil
		w.state = StateEnteringAmount
		return ContinueResult{State: w.state, Tier: tier, Gated: true, Cancelled: true}, nil

	default:
		w.pending = nil
		w.state = StateEnteringAmount
		return ContinueResult{State: w.state, Tier: tier, Gated: true}, verifyErr
	}
}

// Send finalizes the transfer. The submit callback runs in the Submitting
// state; its failure returns the workflow to Confirming, its success resets
// the workflow for the next transfer.
//
// The verification flags are re-checked here even though the normal
// transitions make an unverified Confirming state unreachable.
func (w *Workflow) Send(ctx context.Context, submit func(Intent) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateConfirming {
		return fmt.Errorf("send in %s: %w", w.state, ErrInvalidTransition)
	}

	flags, err := w.security.Get(ctx, w.email)
	if err != nil {
		return fmt.Errorf("read security state: %w", err)
	}
	tier := policy.TierFor(w.intent.Amount)
	if (tier == policy.TierLiveness && !flags.LivenessVerified) ||
		(tier == policy.TierDocument && !flags.DocumentVerified) {
		w.logger.WarnContext(ctx, "submission blocked, verification flag unset",
			"email", w.email,
			"tier", tier.String(),
		)
		return ErrVerificationRequired
	}

	w.state = StateSubmitting
	if err := submit(w.intent); err != nil {
		w.state = StateConfirming
		return err
	}

	w.intent = Intent{}
	w.pending = nil
	w.state = StateSelectingContact
	return nil
}

// Cancel abandons the in-progress transfer from any state. An in-flight
// verification attempt is aborted before the state is discarded.
func (w *Workflow) Cancel(_ context.Context) State {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancelVerify != nil {
		w.cancelVerify()
		w.cancelVerify = nil
	}
	w.intent = Intent{}
	w.pending = nil
	w.state = StateSelectingContact
	return w.state
}

// Snapshot returns the current state and intent for status responses.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{State: w.state}
	if w.state != StateSelectingContact {
		intent := w.intent
		snap.Intent = &intent
	}
	if w.pending != nil {
		pending := *w.pending
		snap.Pending = &pending
	}
	return snap
}
