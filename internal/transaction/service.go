package transaction

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/attar/internal/sale"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	// Append stores tx durably. It must return ErrDuplicate instead of overwriting.
	Append(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	Statuses  []Status
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

func (s *Service) Record(ctx context.Context, tx *Transaction) error {
	if tx.ID == uuid.Nil {
		return fmt.Errorf("recording transaction: missing id")
	}

	if tx.Status != StatusPending && tx.Status != StatusCompleted {
		return fmt.Errorf("recording transaction %s: %w: initial status %q", tx.ID, ErrInvalidTransition, tx.Status)
	}

	return s.repo.Append(ctx, tx)
}

// Ingest stores a transaction received from a terminal as synced.
// Receiving the same ID twice is not an error.
func (s *Service) Ingest(ctx context.Context, tx *Transaction, at time.Time) (created bool, err error) {
	tx.Status = StatusSynced
	tx.SyncedAt = &at

	err = s.repo.Append(ctx, tx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrDuplicate):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// Unsynced returns the transactions still waiting for the back office, oldest first.
func (s *Service) Unsynced(ctx context.Context, limit int) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, ListFilter{
		Statuses: []Status{StatusPending, StatusCompleted},
		Limit:    limit,
	})
}

// MarkSynced advances a transaction to synced. Already-synced transactions are left alone.
func (s *Service) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if tx.Status == StatusSynced {
		return nil
	}

	if !tx.Status.CanAdvance(StatusSynced) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, tx.Status, StatusSynced)
	}

	return s.repo.MarkSynced(ctx, id, at)
}

// DaySummary aggregates the sales of one calendar day.
type DaySummary struct {
	Date     time.Time
	Count    int
	Tax      decimal.Decimal
	Total    decimal.Decimal
	ByMethod map[sale.PaymentMethod]decimal.Decimal
}

// Summary groups transactions in filter by day, in the given location.
func (s *Service) Summary(ctx context.Context, filter ListFilter, loc *time.Location) ([]DaySummary, error) {
	txs, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return Summarize(txs, loc), nil
}

func Summarize(txs []*Transaction, loc *time.Location) []DaySummary {
	if loc == nil {
		loc = time.UTC
	}

	days := map[string]*DaySummary{}

	for _, tx := range txs {
		local := tx.CreatedAt.In(loc)
		key := local.Format(time.DateOnly)

		d, ok := days[key]
		if !ok {
			d = &DaySummary{
				Date:     time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc),
				Tax:      decimal.Zero,
				Total:    decimal.Zero,
				ByMethod: map[sale.PaymentMethod]decimal.Decimal{},
			}
			days[key] = d
		}

		d.Count++
		d.Tax = d.Tax.Add(tx.Totals.Tax)
		d.Total = d.Total.Add(tx.Totals.GrandTotal)

		byMethod, ok := d.ByMethod[tx.Payment.Method]
		if !ok {
			byMethod = decimal.Zero
		}

		d.ByMethod[tx.Payment.Method] = byMethod.Add(tx.Totals.GrandTotal)
	}

	out := make([]DaySummary, 0, len(days))
	for _, d := range days {
		out = append(out, *d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	return out
}
