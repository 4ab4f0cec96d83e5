package transfer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vaultpay/internal/audit"
	"vaultpay/internal/transfer/metrics"
)

// SettlementWorker consumes submitted transactions from a channel and flips
// them to completed after the settlement delay.
type SettlementWorker struct {
	store   Store
	inbox   <-chan Transaction
	delay   time.Duration
	metrics *metrics.Metrics
	audit   *audit.Publisher
	logger  *slog.Logger
}

func NewSettlementWorker(store Store, inbox <-chan Transaction, delay time.Duration, m *metrics.Metrics, publisher *audit.Publisher, logger *slog.Logger) *SettlementWorker {
	return &SettlementWorker{
		store:   store,
		inbox:   inbox,
		delay:   delay,
		metrics: m,
		audit:   publisher,
		logger:  logger,
	}
}

// Run settles transactions until the context is cancelled. Each transaction
// settles independently, one delay after its own submission, so a burst of
// submissions does not queue behind one timer. A failed update is logged and
// skipped rather than stopping the worker.
func (w *SettlementWorker) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case txn := <-w.inbox:
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.settle(ctx, txn)
			}()
		}
	}
}

func (w *SettlementWorker) settle(ctx context.Context, txn Transaction) {
	timer := time.NewTimer(w.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	at := time.Now()
	if err := w.store.MarkCompleted(ctx, txn.ID, at); err != nil {
		w.logger.ErrorContext(ctx, "settlement failed",
			"transaction_id", txn.ID,
			"error", err,
		)
		return
	}
	if w.metrics != nil {
		w.metrics.IncrementSettled()
	}
	if w.audit != nil {
		w.audit.Emit(ctx, audit.Event{
			Email:   txn.Email,
			Action:  audit.ActionTransferSettled,
			Subject: txn.ID,
		})
	}
	w.logger.InfoContext(ctx, "transaction settled",
		"transaction_id", txn.ID,
		"amount", txn.Amount,
	)
}
