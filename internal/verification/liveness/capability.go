// Package liveness implements the biometric liveness verification capability.
// One attempt is a strict handshake: acquire a session from the remote
// service, hand it to the native capability, wait for exactly one native
// signal, then confirm the result with the remote service. The verification
// flag is never set on an unconfirmed success.
package liveness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vaultpay/internal/verification"
)

var (
	// ErrNative marks a failure reported by the native biometric layer. The
	// wrapped message is human-readable and shown to the user as-is.
	ErrNative = errors.New("liveness check failed")
	// ErrTimeout marks a native layer that never signalled back within the
	// configured wait window.
	ErrTimeout = errors.New("liveness check timed out")
)

// AttemptState tracks where a single attempt is in its lifecycle. Native
// signals are honored only in StateSessionActive. StateIdle is the zero
// value of an attempt that has not fired its session request yet.
type AttemptState int

const (
	StateIdle AttemptState = iota
	StateSessionRequested
	StateSessionActive
	StateCompleting
	StateConfirmed
	StateFailed
	StateCancelled
)

func (s AttemptState) String() string {
	switch s {
	case StateSessionRequested:
		return "session_requested"
	case StateSessionActive:
		return "session_active"
	case StateCompleting:
		return "completing"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// SessionClient is the remote half of the handshake.
type SessionClient interface {
	StartSession(ctx context.Context, email string) (Session, error)
	ConfirmResult(ctx context.Context, sess Session, email string) error
}

// Capability drives one liveness attempt end to end. It is constructed once
// and safe for sequential reuse; every Verify call owns a fresh session and
// a fresh subscription, so stale listeners are structurally impossible.
type Capability struct {
	client SessionClient
	bridge Bridge
	region string

	// confirmGrace lets the remote verification record settle between the
	// native completion signal and the confirmation call.
	confirmGrace time.Duration
	// waitTimeout bounds how long we wait for the external native surface.
	waitTimeout time.Duration

	logger *slog.Logger
}

func NewCapability(client SessionClient, bridge Bridge, region string, confirmGrace, waitTimeout time.Duration, logger *slog.Logger) *Capability {
	return &Capability{
		client:       client,
		bridge:       bridge,
		region:       region,
		confirmGrace: confirmGrace,
		waitTimeout:  waitTimeout,
		logger:       logger,
	}
}

// Verify runs the full handshake. Ordering is strict: session acquisition
// precedes the native invocation, which precedes any confirmation call.
func (c *Capability) Verify(ctx context.Context, subject string) (verification.Outcome, error) {
	state := StateSessionRequested
	sess, err := c.client.StartSession(ctx, subject)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			state = StateCancelled
			c.logger.InfoContext(ctx, "liveness attempt cancelled",
				"subject", subject,
				"state", state,
			)
			return verification.OutcomeCancelled, nil
		}
		state = StateFailed
		c.logger.WarnContext(ctx, "liveness session request failed",
			"subject", subject,
			"state", state,
			"error", err,
		)
		return verification.OutcomeFailed, err
	}

	// Bind the listener before the native call so a fast completion cannot
	// slip past us. The subscription is keyed to this session and torn down
	// on every exit path.
	sub := c.bridge.Subscribe(sess.SessionID)
	defer sub.Close()

	if err := c.bridge.Start(sess.SessionID, c.region); err != nil {
		state = StateFailed
		c.logger.WarnContext(ctx, "native liveness start failed",
			"session_id", sess.SessionID,
			"state", state,
			"error", err,
		)
		return verification.OutcomeFailed, fmt.Errorf("%w: %v", ErrNative, err)
	}
	state = StateSessionActive

	timeout := time.NewTimer(c.waitTimeout)
	defer timeout.Stop()

	var sig Signal
	select {
	case <-ctx.Done():
		state = StateCancelled
		c.logger.InfoContext(ctx, "liveness attempt cancelled",
			"session_id", sess.SessionID,
			"state", state,
		)
		return verification.OutcomeCancelled, nil
	case <-timeout.C:
		state = StateFailed
		c.logger.WarnContext(ctx, "no native signal before deadline",
			"session_id", sess.SessionID,
			"state", state,
			"wait", c.waitTimeout,
		)
		return verification.OutcomeFailed, ErrTimeout
	case sig = <-sub.C:
	}

	if sig.Kind == SignalError {
		state = StateFailed
		c.logger.WarnContext(ctx, "native layer reported liveness error",
			"session_id", sess.SessionID,
			"state", state,
			"message", sig.Message,
		)
		return verification.OutcomeFailed, fmt.Errorf("%w: %s", ErrNative, sig.Message)
	}

	state = StateCompleting

	// Grace period before confirmation so the remote record can settle.
	grace := time.NewTimer(c.confirmGrace)
	defer grace.Stop()
	select {
	case <-ctx.Done():
		state = StateCancelled
		c.logger.InfoContext(ctx, "liveness attempt cancelled",
			"session_id", sess.SessionID,
			"state", state,
		)
		return verification.OutcomeCancelled, nil
	case <-grace.C:
	}

	if err := c.client.ConfirmResult(ctx, sess, subject); err != nil {
		if errors.Is(err, context.Canceled) {
			state = StateCancelled
			c.logger.InfoContext(ctx, "liveness attempt cancelled",
				"session_id", sess.SessionID,
				"state", state,
			)
			return verification.OutcomeCancelled, nil
		}
		state = StateFailed
		c.logger.WarnContext(ctx, "liveness confirmation failed",
			"session_id", sess.SessionID,
			"state", state,
			"error", err,
		)
		return verification.OutcomeFailed, err
	}

	state = StateConfirmed
	c.logger.InfoContext(ctx, "liveness verification confirmed",
		"session_id", sess.SessionID,
		"subject", subject,
		"state", state,
	)
	return verification.OutcomeCompleted, nil
}
