// Package register owns the live sale of one terminal and turns completed
// sales into durable transactions.
package register

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/connectivity"
	"github.com/MrJamesThe3rd/attar/internal/sale"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

type Options struct {
	TerminalID string
	Now        func() time.Time
	NewID      func() uuid.UUID
	Logger     *slog.Logger
}

type Register struct {
	txs     *transaction.Service
	catalog *catalog.Service
	signal  connectivity.Signal

	terminalID string
	now        func() time.Time
	newID      func() uuid.UUID
	logger     *slog.Logger

	mu      sync.Mutex
	session sale.Session
}

// New returns a register with an empty session. stock may be nil when the
// terminal does not track inventory.
func New(txs *transaction.Service, stock *catalog.Service, signal connectivity.Signal, opts Options) *Register {
	r := &Register{
		txs:        txs,
		catalog:    stock,
		signal:     signal,
		terminalID: opts.TerminalID,
		now:        opts.Now,
		newID:      opts.NewID,
		logger:     opts.Logger,
		session:    sale.Empty(),
	}

	if r.now == nil {
		r.now = time.Now
	}

	if r.newID == nil {
		r.newID = uuid.New
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Session returns the current sale.
func (r *Register) Session() sale.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.session
}

// Dispatch applies a to the current sale. A rejected action changes nothing.
func (r *Register) Dispatch(a sale.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := sale.Reduce(r.session, a)
	if err != nil {
		return err
	}

	r.session = next

	return nil
}

// Cancel drops the current sale without recording anything.
func (r *Register) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.session = sale.Empty()
}

// Complete checks out the current sale, appends it to the transaction log and
// starts a new one. The transaction is durable when Complete returns. If the
// log rejects it, the sale is kept so the cashier can retry.
func (r *Register) Complete(ctx context.Context) (*transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	final, err := sale.Checkout(r.session)
	if err != nil {
		return nil, err
	}

	status := transaction.StatusPending
	if r.signal != nil && r.signal.Online() {
		status = transaction.StatusCompleted
	}

	tx := transaction.FromSession(r.newID(), r.terminalID, r.now(), status, final)

	if err := r.txs.Record(ctx, tx); err != nil {
		return nil, fmt.Errorf("recording transaction %s: %w", tx.ID, err)
	}

	r.session = sale.Empty()

	r.logger.Info("sale completed",
		"id", tx.ID,
		"total", tx.Totals.GrandTotal.StringFixed(2),
		"method", tx.Payment.Method,
		"status", tx.Status,
	)

	if r.catalog != nil {
		if err := r.catalog.Decrement(ctx, tx.Quantities()); err != nil {
			r.logger.Warn("failed to adjust local stock", "id", tx.ID, "error", err)
		}
	}

	return tx, nil
}
