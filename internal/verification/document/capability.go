// Package document implements the document-upload verification capability:
// the user selects an identity document image which is then submitted for
// verification. Failed uploads are not retried automatically; the user
// re-invokes capture and submits again.
package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vaultpay/internal/verification"
)

// ErrUpload marks a document capture or upload failure.
var ErrUpload = errors.New("document upload failed")

// Picker is the local image-selection boundary. It returns a handle to the
// selected image, or ok=false when the user dismissed the picker.
type Picker interface {
	Pick(ctx context.Context) (handle string, ok bool, err error)
}

// Uploader submits a selected document image for verification.
type Uploader interface {
	Upload(ctx context.Context, subject, handle string) error
}

// Capability drives one document verification attempt.
type Capability struct {
	picker   Picker
	uploader Uploader
	logger   *slog.Logger
}

func New(picker Picker, uploader Uploader, logger *slog.Logger) *Capability {
	return &Capability{picker: picker, uploader: uploader, logger: logger}
}

// Verify presents the picker and uploads the selection. No side effects occur
// until the upload succeeds.
func (c *Capability) Verify(ctx context.Context, subject string) (verification.Outcome, error) {
	handle, ok, err := c.picker.Pick(ctx)
	if err != nil {
		return verification.OutcomeFailed, fmt.Errorf("pick document: %w", errors.Join(ErrUpload, err))
	}
	if !ok {
		c.logger.InfoContext(ctx, "document selection dismissed", "subject", subject)
		return verification.OutcomeCancelled, nil
	}

	if err := c.uploader.Upload(ctx, subject, handle); err != nil {
		if errors.Is(err, context.Canceled) {
			return verification.OutcomeCancelled, nil
		}
		c.logger.WarnContext(ctx, "document upload failed",
			"subject", subject,
			"error", err,
		)
		return verification.OutcomeFailed, fmt.Errorf("upload document: %w", errors.Join(ErrUpload, err))
	}

	return verification.OutcomeCompleted, nil
}

// SimulatedUploader accepts every document after a fixed processing delay.
// It stands in for the real verification backend in the demo deployment.
type SimulatedUploader struct {
	Delay time.Duration
}

func (u SimulatedUploader) Upload(ctx context.Context, _, _ string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(u.Delay):
		return nil
	}
}

// AutoPicker always returns a fixed handle. Used by the demo wiring where no
// interactive picker exists.
type AutoPicker struct {
	Handle string
}

func (p AutoPicker) Pick(context.Context) (string, bool, error) {
	return p.Handle, true, nil
}
