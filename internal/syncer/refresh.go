package syncer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/customer"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

// Source serves the back office's catalog and customer directory.
type Source interface {
	FetchCatalog(ctx context.Context) ([]catalog.Item, error)
	FetchCustomers(ctx context.Context) ([]customer.Customer, error)
}

// Refresh replaces the terminal's catalog and customers with the back office's
// copy. Sales the back office has not seen yet are taken off the fresh stock
// figures again, so offline sales stay reflected after a refresh.
func Refresh(ctx context.Context, src Source, items *catalog.Service, customers *customer.Service, txs *transaction.Service) error {
	fetched, err := src.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("fetching catalog: %w", err)
	}

	directory, err := src.FetchCustomers(ctx)
	if err != nil {
		return fmt.Errorf("fetching customers: %w", err)
	}

	unsynced, err := txs.Unsynced(ctx, 0)
	if err != nil {
		return fmt.Errorf("listing unsynced transactions: %w", err)
	}

	if err := items.Replace(ctx, fetched); err != nil {
		return err
	}

	sold := make(map[string]int)
	for _, tx := range unsynced {
		for id, qty := range tx.Quantities() {
			sold[id] += qty
		}
	}

	if err := items.Decrement(ctx, sold); err != nil {
		return fmt.Errorf("reapplying unsynced sales: %w", err)
	}

	if err := customers.Replace(ctx, directory); err != nil {
		return err
	}

	slog.Info("catalog refreshed", "items", len(fetched), "customers", len(directory), "unsynced_sales", len(unsynced))

	return nil
}
