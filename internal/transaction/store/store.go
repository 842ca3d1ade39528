// Package store is the back-office ledger of synchronized terminal transactions.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: status, synced_at, payload
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		statusStr string
		syncedAt  *time.Time
		payload   []byte
	)

	if err := s.Scan(&statusStr, &syncedAt, &payload); err != nil {
		return nil, err
	}

	var tx transaction.Transaction
	if err := json.Unmarshal(payload, &tx); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	tx.Status = transaction.Status(statusStr)
	tx.SyncedAt = syncedAt

	return &tx, nil
}

const selectTransactionColumns = `t.status, t.synced_at, t.payload`

// Append inserts tx unless a row with the same id exists, in which case it
// reports transaction.ErrDuplicate and leaves the stored row as it was.
func (s *Store) Append(ctx context.Context, tx *transaction.Transaction) error {
	payload, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encoding transaction: %w", err)
	}

	query := `
		INSERT INTO pos_transactions (id, terminal_id, created_at, status, synced_at, customer_id,
			payment_method, grand_total, tax, payload)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.ID,
		tx.TerminalID,
		tx.CreatedAt,
		tx.Status,
		tx.SyncedAt,
		tx.CustomerID,
		tx.Payment.Method,
		tx.Totals.GrandTotal.String(),
		tx.Totals.Tax.String(),
		payload,
	)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", transaction.ErrDuplicate, tx.ID)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM pos_transactions t WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM pos_transactions t WHERE TRUE`

	var args []any

	argIdx := 1

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}

		query += fmt.Sprintf(" AND t.status = ANY($%d)", argIdx)

		args = append(args, statuses)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.created_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.created_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY t.created_at ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (s *Store) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE pos_transactions
		SET status = $1, synced_at = $2
		WHERE id = $3 AND status <> $1
	`

	if _, err := s.db.ExecContext(ctx, query, transaction.StatusSynced, at, id); err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return nil
}
