package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vaultpay/internal/account"
	"vaultpay/internal/audit"
	"vaultpay/internal/contacts"
	"vaultpay/internal/policy"
	"vaultpay/internal/security"
	"vaultpay/internal/transfer/metrics"
	"vaultpay/internal/verification/document"
	"vaultpay/internal/verification/liveness"
	"vaultpay/pkg/platform/sentinel"
	"vaultpay/pkg/requestcontext"

	dErrors "vaultpay/pkg/domain-errors"
)

// Service owns one transfer workflow per authenticated user and the
// transaction history around it.
type Service struct {
	contacts    contacts.Store
	accounts    account.Store
	security    security.Store
	caps        Capabilities
	store       Store
	settlements chan<- Transaction
	audit       *audit.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger

	mu        sync.Mutex
	workflows map[string]*Workflow
}

func NewService(
	contactStore contacts.Store,
	accounts account.Store,
	securityStore security.Store,
	caps Capabilities,
	store Store,
	settlements chan<- Transaction,
	publisher *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		contacts:    contactStore,
		accounts:    accounts,
		security:    securityStore,
		caps:        caps,
		store:       store,
		settlements: settlements,
		audit:       publisher,
		metrics:     m,
		logger:      logger,
		workflows:   make(map[string]*Workflow),
	}
}

func (s *Service) workflowFor(email string) *Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workflows[email]
	if !ok {
		w = NewWorkflow(email, s.accounts, s.security, s.caps, s.logger)
		s.workflows[email] = w
	}
	return w
}

// Select starts a transfer toward the given contact.
func (s *Service) Select(ctx context.Context, email, contactID string) (Snapshot, error) {
	recipient, err := s.contacts.FindByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Snapshot{}, dErrors.New(dErrors.CodeNotFound, "contact not found")
		}
		return Snapshot{}, err
	}

	w := s.workflowFor(email)
	if _, err := w.SelectRecipient(ctx, recipient); err != nil {
		return w.Snapshot(), mapWorkflowError(err)
	}
	s.audit.Emit(ctx, audit.Event{
		Email:   email,
		Action:  audit.ActionTransferInitiated,
		Subject: recipient.ID,
	})
	return w.Snapshot(), nil
}

// EnterAmount validates and records the amount for the in-progress transfer.
func (s *Service) EnterAmount(ctx context.Context, email string, amount int64, description string) (Snapshot, error) {
	w := s.workflowFor(email)
	if _, err := w.EnterAmount(ctx, amount, description); err != nil {
		return w.Snapshot(), mapWorkflowError(err)
	}
	return w.Snapshot(), nil
}

// Continue runs the security gate for the entered amount. The call blocks
// while a verification capability is in flight.
func (s *Service) Continue(ctx context.Context, email string) (ContinueResult, error) {
	w := s.workflowFor(email)
	start := time.Now()

	result, err := w.Continue(ctx)
	if result.Gated {
		s.recordVerification(ctx, email, result, err, start)
	}
	if err != nil {
		return result, mapWorkflowError(err)
	}
	return result, nil
}

func (s *Service) recordVerification(ctx context.Context, email string, result ContinueResult, verifyErr error, start time.Time) {
	outcome := "completed"
	action := audit.ActionLivenessVerified
	if result.Tier == policy.TierDocument {
		action = audit.ActionDocumentVerified
	}
	switch {
	case result.Cancelled:
		outcome = "cancelled"
		action = audit.ActionVerificationCancelled
	case verifyErr != nil:
		outcome = "failed"
		action = audit.ActionVerificationFailed
	}

	if s.metrics != nil {
		s.metrics.ObserveVerification(result.Tier.String(), outcome, start)
	}
	event := audit.Event{
		Email:   email,
		Action:  action,
		Subject: result.Tier.String(),
	}
	if verifyErr != nil {
		event.Detail = verifyErr.Error()
	}
	s.audit.Emit(ctx, event)
}

// Send finalizes the confirmed transfer: debits the balance, records a
// pending transaction and hands it to the settlement worker.
func (s *Service) Send(ctx context.Context, email string) (Transaction, error) {
	w := s.workflowFor(email)

	var txn Transaction
	err := w.Send(ctx, func(intent Intent) error {
		if err := s.accounts.Debit(ctx, email, intent.Amount); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return ErrInsufficientFunds
			}
			return err
		}

		txn = Transaction{
			ID:          uuid.NewString(),
			Email:       email,
			Recipient:   intent.Recipient,
			Amount:      intent.Amount,
			Description: intent.Description,
			Status:      StatusPending,
			CreatedAt:   requestcontext.Now(ctx),
		}
		if err := s.store.Create(ctx, txn); err != nil {
			// Put the money back so the displayed balance stays honest.
			if creditErr := s.accounts.Credit(ctx, email, intent.Amount); creditErr != nil {
				s.logger.ErrorContext(ctx, "refund after failed create",
					"email", email,
					"error", creditErr,
				)
			}
			return fmt.Errorf("record transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return Transaction{}, mapWorkflowError(err)
	}

	s.settlements <- txn
	if s.metrics != nil {
		s.metrics.IncrementSubmitted()
	}
	s.audit.Emit(ctx, audit.Event{
		Email:   email,
		Action:  audit.ActionTransferSent,
		Subject: txn.ID,
	})
	s.logger.InfoContext(ctx, "transfer submitted",
		"email", email,
		"transaction_id", txn.ID,
		"amount", txn.Amount,
	)
	return txn, nil
}

// Cancel abandons the in-progress transfer.
func (s *Service) Cancel(ctx context.Context, email string) Snapshot {
	w := s.workflowFor(email)
	w.Cancel(ctx)
	s.audit.Emit(ctx, audit.Event{
		Email:  email,
		Action: audit.ActionTransferCancelled,
	})
	return w.Snapshot()
}

// Status reports the workflow position for the user.
func (s *Service) Status(_ context.Context, email string) Snapshot {
	return s.workflowFor(email).Snapshot()
}

// Activity lists the user's transactions newest-first.
func (s *Service) Activity(ctx context.Context, email string) ([]Transaction, error) {
	return s.store.ListByEmail(ctx, email)
}

// SecurityStatus reports the session's verification flags.
func (s *Service) SecurityStatus(ctx context.Context, email string) (security.State, error) {
	return s.security.Get(ctx, email)
}

// mapWorkflowError converts workflow and verification errors into coded
// domain errors for the HTTP surface.
func mapWorkflowError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return dErrors.Wrap(dErrors.CodeBadRequest, "amount must be greater than zero", err)
	case errors.Is(err, ErrInsufficientFunds):
		return dErrors.Wrap(dErrors.CodeBadRequest, "amount exceeds available balance", err)
	case errors.Is(err, ErrInvalidTransition):
		return dErrors.Wrap(dErrors.CodeConflict, "operation not allowed in current state", err)
	case errors.Is(err, ErrVerificationRequired):
		return dErrors.Wrap(dErrors.CodeForbidden, "verification required before submission", err)
	case errors.Is(err, liveness.ErrSessionRequest):
		return dErrors.Wrap(dErrors.CodeUnavailable, "could not start verification session", err)
	case errors.Is(err, liveness.ErrConfirmation):
		return dErrors.Wrap(dErrors.CodeUnavailable, "verification could not be confirmed", err)
	case errors.Is(err, liveness.ErrTimeout):
		return dErrors.Wrap(dErrors.CodeUnavailable, "verification timed out", err)
	case errors.Is(err, liveness.ErrNative):
		return dErrors.Wrap(dErrors.CodeBadRequest, err.Error(), err)
	case errors.Is(err, document.ErrUpload):
		return dErrors.Wrap(dErrors.CodeUnavailable, "document upload failed", err)
	default:
		return err
	}
}
