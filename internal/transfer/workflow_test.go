package transfer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultpay/internal/account"
	"vaultpay/internal/contacts"
	"vaultpay/internal/policy"
	"vaultpay/internal/security"
	"vaultpay/internal/verification"
)

type stubCapability struct {
	outcome verification.Outcome
	err     error
	calls   atomic.Int32
	// block makes Verify wait for ctx cancellation before returning.
	block bool
}

func (c *stubCapability) Verify(ctx context.Context, _ string) (verification.Outcome, error) {
	c.calls.Add(1)
	if c.block {
		<-ctx.Done()
		return verification.OutcomeCancelled, nil
	}
	return c.outcome, c.err
}

// gatedCapability ignores ctx cancellation entirely; each Verify call hands
// the test a release channel and blocks until an outcome is sent on it.
type gatedCapability struct {
	started chan chan verification.Outcome
}

func (c *gatedCapability) Verify(context.Context, string) (verification.Outcome, error) {
	release := make(chan verification.Outcome)
	c.started <- release
	return <-release, nil
}

func testRecipient() contacts.Contact {
	return contacts.Contact{ID: "1", Name: "John Smith", Email: "john@example.com", AccountNumber: "1234567890"}
}

func newTestWorkflow(t *testing.T, caps Capabilities) (*Workflow, security.Store) {
	t.Helper()
	accounts := account.NewMemory(account.Account{
		Name:    "Alex Thompson",
		Email:   "alex@example.com",
		Balance: 10_000_00,
	})
	securityStore := security.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorkflow("alex@example.com", accounts, securityStore, caps, logger), securityStore
}

func advanceToAmount(t *testing.T, w *Workflow, amount int64) {
	t.Helper()
	_, err := w.SelectRecipient(context.Background(), testRecipient())
	require.NoError(t, err)
	_, err = w.EnterAmount(context.Background(), amount, "rent")
	require.NoError(t, err)
}

func TestSelectRecipient_OnlyFromStart(t *testing.T) {
	w, _ := newTestWorkflow(t, Capabilities{})

	state, err := w.SelectRecipient(context.Background(), testRecipient())
	require.NoError(t, err)
	assert.Equal(t, StateEnteringAmount, state)

	_, err = w.SelectRecipient(context.Background(), testRecipient())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEnterAmount_Validation(t *testing.T) {
	w, _ := newTestWorkflow(t, Capabilities{})
	_, err := w.SelectRecipient(context.Background(), testRecipient())
	require.NoError(t, err)

	t.Run("non-positive", func(t *testing.T) {
		state, err := w.EnterAmount(context.Background(), 0, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Equal(t, StateEnteringAmount, state)
	})

	t.Run("exceeds balance", func(t *testing.T) {
		state, err := w.EnterAmount(context.Background(), 10_000_01, "")
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Equal(t, StateEnteringAmount, state)
	})

	t.Run("valid amount stays on step", func(t *testing.T) {
		state, err := w.EnterAmount(context.Background(), 30_00, "coffee fund")
		require.NoError(t, err)
		assert.Equal(t, StateEnteringAmount, state)
	})
}

func TestContinue_LowAmountSkipsVerification(t *testing.T) {
	doc := &stubCapability{outcome: verification.OutcomeCompleted}
	live := &stubCapability{outcome: verification.OutcomeCompleted}
	w, _ := newTestWorkflow(t, Capabilities{Document: doc, Liveness: live})
	advanceToAmount(t, w, 30_00)

	result, err := w.Continue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateConfirming, result.State)
	assert.Equal(t, policy.TierNone, result.Tier)
	assert.False(t, result.Gated)
	assert.Zero(t, doc.calls.Load())
	assert.Zero(t, live.calls.Load())
}

func TestContinue_DocumentTier(t *testing.T) {
	doc := &stubCapability{outcome: verification.OutcomeCompleted}
	w, securityStore := newTestWorkflow(t, Capabilities{Document: doc})
	advanceToAmount(t, w, 75_00)

	result, err := w.Continue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateConfirming, result.State)
	assert.Equal(t, policy.TierDocument, result.Tier)
	assert.True(t, result.Gated)
	assert.Equal(t, int32(1), doc.calls.Load())

	flags, err := securityStore.Get(context.Background(), "alex@example.com")
	require.NoError(t, err)
	assert.True(t, flags.DocumentVerified)
	assert.NotNil(t, flags.LastDocumentUpload)
	assert.False(t, flags.LivenessVerified)

	snap := w.Snapshot()
	assert.Nil(t, snap.Pending)
	require.NotNil(t, snap.Intent)
	assert.Equal(t, int64(75_00), snap.Intent.Amount)
}

func TestContinue_LivenessTier(t *testing.T) {
	live := &stubCapability{outcome: verification.OutcomeCompleted}
	w, securityStore := newTestWorkflow(t, Capabilities{Liveness: live})
	advanceToAmount(t, w, 500_00)

	result, err := w.Continue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateConfirming, result.State)
	assert.Equal(t, policy.TierLiveness, result.Tier)
	assert.Equal(t, int32(1), live.calls.Load())

	flags, err := securityStore.Get(context.Background(), "alex@example.com")
	require.NoError(t, err)
	assert.True(t, flags.LivenessVerified)
	assert.NotNil(t, flags.LastLivenessCheck)
}

func TestContinue_VerificationNotRepeatedOnceGranted(t *testing.T) {
	live := &stubCapability{outcome: verification.OutcomeCompleted}
	w, _ := newTestWorkflow(t, Capabilities{Liveness: live})

	advanceToAmount(t, w, 500_00)
	_, err := w.Continue(context.Background())
	require.NoError(t, err)
	require.NoError(t, w.Send(context.Background(), func(Intent) error { return nil }))

	// Second high-value transfer in the same session.
	advanceToAmount(t, w, 300_00)
	result, err := w.Continue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateConfirming, result.State)
	assert.False(t, result.Gated)
	assert.Equal(t, int32(1), live.calls.Load())
}

func TestContinue_VerificationFailureReturnsToAmountStep(t *testing.T) {
	verifyErr := errors.New("camera permission denied")
	live := &stubCapability{outcome: verification.OutcomeFailed, err: verifyErr}
	w, securityStore := newTestWorkflow(t, Capabilities{Liveness: live})
	advanceToAmount(t, w, 500_00)

	result, err := w.Continue(context.Background())
	assert.ErrorIs(t, err, verifyErr)
	assert.Equal(t, StateEnteringAmount, result.State)
	assert.True(t, result.Gated)

	flags, err := securityStore.Get(context.Background(), "alex@example.com")
	require.NoError(t, err)
	assert.False(t, flags.LivenessVerified)

	// The intent survives so the user can retry without re-entering it.
	snap := w.Snapshot()
	assert.Nil(t, snap.Pending)
	require.NotNil(t, snap.Intent)
	assert.Equal(t, int64(500_00), snap.Intent.Amount)
}

func TestContinue_VerificationCancelledReturnsToAmountStep(t *testing.T) {
	doc := &stubCapability{outcome: verification.OutcomeCancelled}
	w, securityStore := newTestWorkflow(t, Capabilities{Document: doc})
	advanceToAmount(t, w, 75_00)

	result, err := w.Continue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateEnteringAmount, result.State)
	assert.True(t, result.Cancelled)

	flags, err := securityStore.Get(context.Background(), "alex@example.com")
	require.NoError(t, err)
	assert.False(t, flags.DocumentVerified)
}

func TestContinue_PendingSnapshotExistsOnlyWhileAwaiting(t *testing.T) {
	release := make(chan struct{})
	blocking := capabilityFunc(func(ctx context.Context, _ string) (verification.Outcome, error) {
		<-release
		return verification.OutcomeCompleted, nil
	})
	w, _ := newTestWorkflow(t, Capabilities{Liveness: blocking})
	advanceToAmount(t, w, 500_00)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = w.Continue(context.Background())
	}()

	require.Eventually(t, func() bool {
		return w.Snapshot().State == StateAwaitingLiveness
	}, time.Second, 5*time.Millisecond)

	snap := w.Snapshot()
	require.NotNil(t, snap.Pending)
	assert.Equal(t, int64(500_00), snap.Pending.Amount)

	close(release)
	<-done
	assert.Nil(t, w.Snapshot().Pending)
}

type capabilityFunc func(ctx context.Context, subject string) (verification.Outcome, error)

func (f capabilityFunc) Verify(ctx context.Context, subject string) (verification.Outcome, error) {
	return f(ctx, subject)
}

func TestCancel_DuringVerificationAbortsAttempt(t *testing.T) {
	live := &stubCapability{block: true}
	w, _ := newTestWorkflow(t, Capabilities{Liveness: live})
	advanceToAmount(t, w, 500_00)

	results := make(chan ContinueResult, 1)
	go func() {
		result, _ := w.Continue(context.Background())
		results <- result
	}()

	require.Eventually(t, func() bool {
		return w.Snapshot().State == StateAwaitingLiveness
	}, time.Second, 5*time.Millisecond)

	state := w.Cancel(context.Background())
	assert.Equal(t, StateSelectingContact, state)

	select {
	case result := <-results:
		assert.True(t, result.Cancelled)
		assert.Equal(t, StateSelectingContact, result.State)
	case <-time.After(time.Second):
		t.Fatal("continue did not return after cancel")
	}

	snap := w.Snapshot()
	assert.Nil(t, snap.Intent)
	assert.Nil(t, snap.Pending)
}

func TestContinue_StaleAttemptCannotClobberRestartedTransfer(t *testing.T) {
	doc := &gatedCapability{started: make(chan chan verification.Outcome, 2)}
	w, store := newTestWorkflow(t, Capabilities{Document: doc})
	advanceToAmount(t, w, 75_00)

	firstResults := make(chan ContinueResult, 1)
	go func() {
		result, _ := w.Continue(context.Background())
		firstResults <- result
	}()
	releaseFirst := <-doc.started

	w.Cancel(context.Background())

	advanceToAmount(t, w, 80_00)
	secondResults := make(chan ContinueResult, 1)
	go func() {
		result, _ := w.Continue(context.Background())
		secondResults <- result
	}()
	releaseSecond := <-doc.started

	// The cancelled attempt resolves only now, while the restarted transfer
	// holds the document gate. Its outcome must not touch that gate.
	releaseFirst <- verification.OutcomeCompleted
	select {
	case result := <-firstResults:
		assert.True(t, result.Cancelled)
	case <-time.After(time.Second):
		t.Fatal("first continue did not return")
	}

	snap := w.Snapshot()
	assert.Equal(t, StateAwaitingDocument, snap.State)
	require.NotNil(t, snap.Pending)
	assert.Equal(t, int64(80_00), snap.Pending.Amount)

	flags, err := store.Get(context.Background(), "alex@example.com")
	require.NoError(t, err)
	assert.False(t, flags.DocumentVerified)

	releaseSecond <- verification.OutcomeCompleted
	select {
	case result := <-secondResults:
		assert.False(t, result.Cancelled)
		assert.Equal(t, StateConfirming, result.State)
	case <-time.After(time.Second):
		t.Fatal("second continue did not return")
	}
}

func TestSend_RequiresConfirmingState(t *testing.T) {
	w, _ := newTestWorkflow(t, Capabilities{})
	err := w.Send(context.Background(), func(Intent) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSend_BlocksUnverifiedSubmission(t *testing.T) {
	w, _ := newTestWorkflow(t, Capabilities{})

	// Force a state the normal transitions cannot produce.
	w.state = StateConfirming
	w.intent = Intent{Amount: 500_00, Recipient: testRecipient()}

	submitted := false
	err := w.Send(context.Background(), func(Intent) error {
		submitted = true
		return nil
	})
	assert.ErrorIs(t, err, ErrVerificationRequired)
	assert.False(t, submitted)
}

func TestSend_SubmitFailureReturnsToConfirming(t *testing.T) {
	w, _ := newTestWorkflow(t, Capabilities{})
	advanceToAmount(t, w, 30_00)
	_, err := w.Continue(context.Background())
	require.NoError(t, err)

	submitErr := errors.New("store down")
	err = w.Send(context.Background(), func(Intent) error { return submitErr })
	assert.ErrorIs(t, err, submitErr)
	assert.Equal(t, StateConfirming, w.Snapshot().State)
}

func TestSend_ResetsWorkflow(t *testing.T) {
	w, _ := newTestWorkflow(t, Capabilities{})
	advanceToAmount(t, w, 30_00)
	_, err := w.Continue(context.Background())
	require.NoError(t, err)

	var got Intent
	require.NoError(t, w.Send(context.Background(), func(intent Intent) error {
		got = intent
		return nil
	}))

	assert.Equal(t, int64(30_00), got.Amount)
	assert.Equal(t, "rent", got.Description)

	snap := w.Snapshot()
	assert.Equal(t, StateSelectingContact, snap.State)
	assert.Nil(t, snap.Intent)
}
