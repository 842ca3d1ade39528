// Package local is the terminal's append-only transaction log on embedded SQLite.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	created_at  INTEGER NOT NULL,
	status      TEXT NOT NULL,
	synced_at   INTEGER,
	payload     BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_status_idx ON transactions (status, created_at);
`

type Log struct {
	db *sql.DB
}

// New prepares the log table on db.
func New(ctx context.Context, db *sql.DB) (*Log, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating transaction log: %w", err)
	}

	return &Log{db: db}, nil
}

// Append inserts tx. It never replaces an existing row.
func (l *Log) Append(ctx context.Context, tx *transaction.Transaction) error {
	payload, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encoding transaction: %w", err)
	}

	res, err := l.db.ExecContext(ctx,
		`INSERT INTO transactions (id, created_at, status, synced_at, payload)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		tx.ID.String(), tx.CreatedAt.UTC().UnixNano(), string(tx.Status), nullTime(tx.SyncedAt), payload,
	)
	if err != nil {
		return fmt.Errorf("appending transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("appending transaction: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", transaction.ErrDuplicate, tx.ID)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		status   string
		syncedAt sql.NullInt64
		payload  []byte
	)

	if err := s.Scan(&status, &syncedAt, &payload); err != nil {
		return nil, err
	}

	var tx transaction.Transaction
	if err := json.Unmarshal(payload, &tx); err != nil {
		return nil, fmt.Errorf("decoding transaction: %w", err)
	}

	// The columns are authoritative for the two mutable fields.
	tx.Status = transaction.Status(status)
	tx.SyncedAt = nil

	if syncedAt.Valid {
		t := time.Unix(0, syncedAt.Int64).UTC()
		tx.SyncedAt = &t
	}

	return &tx, nil
}

func (l *Log) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	row := l.db.QueryRowContext(ctx, `SELECT status, synced_at, payload FROM transactions WHERE id = ?`, id.String())

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (l *Log) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT status, synced_at, payload FROM transactions WHERE 1 = 1`

	var args []any

	if len(filter.Statuses) > 0 {
		query += ` AND status IN (?` + strings.Repeat(`, ?`, len(filter.Statuses)-1) + `)`
		for _, s := range filter.Statuses {
			args = append(args, string(s))
		}
	}

	if filter.StartDate != nil {
		query += ` AND created_at >= ?`
		args = append(args, filter.StartDate.UTC().UnixNano())
	}

	if filter.EndDate != nil {
		query += ` AND created_at <= ?`
		args = append(args, filter.EndDate.UTC().UnixNano())
	}

	query += ` ORDER BY created_at ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
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
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

// MarkSynced only ever moves a row forward; a synced row is left untouched.
func (l *Log) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE transactions SET status = ?, synced_at = ? WHERE id = ? AND status IN (?, ?)`,
		string(transaction.StatusSynced), at.UTC().UnixNano(), id.String(),
		string(transaction.StatusPending), string(transaction.StatusCompleted),
	)
	if err != nil {
		return fmt.Errorf("marking transaction synced: %w", err)
	}

	return nil
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: t.UTC().UnixNano(), Valid: true}
}
