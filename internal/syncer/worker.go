// Package syncer drains the terminal's transaction log to the back office.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/attar/internal/connectivity"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

var ErrOffline = errors.New("back office unreachable")

type Pusher interface {
	PushTransaction(ctx context.Context, tx *transaction.Transaction) error
}

type Options struct {
	// Interval between passes. Zero disables the background loop.
	Interval time.Duration
	// PushesPerSecond caps upload rate; zero means unlimited.
	PushesPerSecond float64
	// Batch bounds how many transactions a pass looks at.
	Batch int
}

// Result describes one pass.
type Result struct {
	Pushed int
	Failed int
}

type Worker struct {
	txs     *transaction.Service
	pusher  Pusher
	signal  connectivity.Signal
	opts    Options
	limiter *rate.Limiter
	now     func() time.Time
	logger  *slog.Logger

	mu sync.Mutex
}

func NewWorker(txs *transaction.Service, pusher Pusher, signal connectivity.Signal, opts Options, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Batch <= 0 {
		opts.Batch = 100
	}

	limit := rate.Inf
	if opts.PushesPerSecond > 0 {
		limit = rate.Limit(opts.PushesPerSecond)
	}

	return &Worker{
		txs:     txs,
		pusher:  pusher,
		signal:  signal,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
		logger:  logger,
	}
}

// Run performs a pass every Interval until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	if w.opts.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil && !errors.Is(err, ErrOffline) && ctx.Err() == nil {
			w.logger.Error("sync pass failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce pushes every unsynced transaction it can. A failed push leaves the
// transaction for the next pass and is skipped for the rest of this one, so
// rejected transactions at the head of the log never starve newer ones.
// Passes never overlap.
func (w *Worker) RunOnce(ctx context.Context) (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var res Result

	if !w.signal.Online() {
		return res, ErrOffline
	}

	failed := make(map[uuid.UUID]bool)

	for {
		// Failed rows stay unsynced and come back first; widen the page past them.
		limit := len(failed) + w.opts.Batch

		page, err := w.txs.Unsynced(ctx, limit)
		if err != nil {
			return res, fmt.Errorf("listing unsynced transactions: %w", err)
		}

		fresh := 0

		for _, tx := range page {
			if failed[tx.ID] {
				continue
			}

			fresh++

			if err := w.push(ctx, tx); err != nil {
				if ctx.Err() != nil {
					return res, err
				}

				failed[tx.ID] = true
				res.Failed++

				continue
			}

			res.Pushed++
		}

		if fresh == 0 || len(page) < limit {
			break
		}
	}

	if res.Pushed > 0 || res.Failed > 0 {
		w.logger.Info("sync pass finished", "pushed", res.Pushed, "failed", res.Failed)
	}

	return res, nil
}

func (w *Worker) push(ctx context.Context, tx *transaction.Transaction) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	if err := w.pusher.PushTransaction(ctx, tx); err != nil {
		w.logger.Warn("failed to push transaction", "id", tx.ID, "error", err)
		return err
	}

	if err := w.txs.MarkSynced(ctx, tx.ID, w.now()); err != nil {
		w.logger.Error("failed to mark transaction synced", "id", tx.ID, "error", err)
		return err
	}

	return nil
}
