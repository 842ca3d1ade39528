package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/attar/internal/customer"
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

func scanCustomer(s scanner) (customer.Customer, error) {
	var (
		c                   customer.Customer
		nameAr, phone, mail sql.NullString
		discount            string
	)

	if err := s.Scan(&c.ID, &c.Name, &nameAr, &phone, &mail, &c.LoyaltyPoints, &discount); err != nil {
		return customer.Customer{}, err
	}

	d, err := decimal.NewFromString(discount)
	if err != nil {
		return customer.Customer{}, fmt.Errorf("parsing discount of %s: %w", c.ID, err)
	}

	c.DiscountPercentage = d
	c.NameAr = nameAr.String
	c.Phone = phone.String
	c.Email = mail.String

	return c, nil
}

const selectCustomerColumns = `id, name, name_ar, phone, email, loyalty_points, discount_percentage::text`

func (s *Store) ListCustomers(ctx context.Context) ([]customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var out []customer.Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customers: %w", err)
	}

	return out, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customer.Customer{}, customer.ErrNotFound
		}

		return customer.Customer{}, fmt.Errorf("getting customer: %w", err)
	}

	return c, nil
}

func (s *Store) ReplaceCustomers(ctx context.Context, customers []customer.Customer) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	upsert := `
		INSERT INTO customers (id, name, name_ar, phone, email, loyalty_points, discount_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, name_ar = EXCLUDED.name_ar, phone = EXCLUDED.phone,
			email = EXCLUDED.email, loyalty_points = EXCLUDED.loyalty_points,
			discount_percentage = EXCLUDED.discount_percentage
	`

	for _, c := range customers {
		if _, err := dbTx.ExecContext(ctx, upsert,
			c.ID, c.Name, c.NameAr, c.Phone, c.Email, c.LoyaltyPoints, c.DiscountPercentage.String(),
		); err != nil {
			return fmt.Errorf("upserting customer %s: %w", c.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
