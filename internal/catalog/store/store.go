package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, name, name_ar, price, stock, unit, tax_rate, barcode
func scanItem(s scanner) (catalog.Item, error) {
	var (
		it            catalog.Item
		nameAr, bc    sql.NullString
		price, taxStr string
	)

	if err := s.Scan(&it.ID, &it.Name, &nameAr, &price, &it.Stock, &it.Unit, &taxStr, &bc); err != nil {
		return catalog.Item{}, err
	}

	var err error
	if it.Price, err = decimal.NewFromString(price); err != nil {
		return catalog.Item{}, fmt.Errorf("parsing price of %s: %w", it.ID, err)
	}

	if it.TaxRate, err = decimal.NewFromString(taxStr); err != nil {
		return catalog.Item{}, fmt.Errorf("parsing tax rate of %s: %w", it.ID, err)
	}

	it.NameAr = nameAr.String
	it.Barcode = bc.String

	return it, nil
}

const selectItemColumns = `id, name, name_ar, price::text, stock, unit, tax_rate::text, barcode`

func (s *Store) ListItems(ctx context.Context) ([]catalog.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM catalog_items WHERE active ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []catalog.Item

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (catalog.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM catalog_items WHERE id = $1 AND active`

	it, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Item{}, catalog.ErrNotFound
		}

		return catalog.Item{}, fmt.Errorf("getting item: %w", err)
	}

	return it, nil
}

func (s *Store) FindByBarcode(ctx context.Context, barcode string) (catalog.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM catalog_items WHERE barcode = $1 AND active LIMIT 1`

	it, err := scanItem(s.db.QueryRowContext(ctx, query, barcode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Item{}, catalog.ErrNotFound
		}

		return catalog.Item{}, fmt.Errorf("finding by barcode: %w", err)
	}

	return it, nil
}

// ReplaceItems upserts the snapshot and deactivates every item not in it, in one database transaction.
func (s *Store) ReplaceItems(ctx context.Context, items []catalog.Item) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `UPDATE catalog_items SET active = FALSE`); err != nil {
		return fmt.Errorf("deactivating items: %w", err)
	}

	upsert := `
		INSERT INTO catalog_items (id, name, name_ar, price, stock, unit, tax_rate, barcode, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, name_ar = EXCLUDED.name_ar, price = EXCLUDED.price,
			stock = EXCLUDED.stock, unit = EXCLUDED.unit, tax_rate = EXCLUDED.tax_rate,
			barcode = EXCLUDED.barcode, active = TRUE, updated_at = NOW()
	`

	for _, it := range items {
		_, err := dbTx.ExecContext(ctx, upsert,
			it.ID, it.Name, nullString(it.NameAr), it.Price.String(), it.Stock, it.Unit,
			it.TaxRate.String(), nullString(it.Barcode),
		)
		if err != nil {
			return fmt.Errorf("upserting item %s: %w", it.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) AdjustStock(ctx context.Context, adjustments []catalog.StockAdjustment) error {
	query := `
		UPDATE catalog_items
		SET stock = GREATEST(stock + $1, 0), updated_at = NOW()
		WHERE id = $2
	`

	for _, adj := range adjustments {
		if _, err := s.db.ExecContext(ctx, query, adj.Delta, adj.ItemID); err != nil {
			return fmt.Errorf("adjusting stock of %s: %w", adj.ItemID, err)
		}
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
