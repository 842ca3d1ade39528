package catalog

import (
	"context"
	"fmt"
	"strings"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=catalog
type Repository interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id string) (Item, error)
	FindByBarcode(ctx context.Context, barcode string) (Item, error)
	ReplaceItems(ctx context.Context, items []Item) error
	AdjustStock(ctx context.Context, adjustments []StockAdjustment) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.repo.ListItems(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	return s.repo.GetItem(ctx, id)
}

// Lookup resolves a scanned or typed code, trying the barcode first and then the item ID.
func (s *Service) Lookup(ctx context.Context, code string) (Item, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Item{}, ErrNotFound
	}

	item, err := s.repo.FindByBarcode(ctx, code)
	if err == nil {
		return item, nil
	}

	return s.repo.GetItem(ctx, code)
}

// Search returns the items whose name, Arabic name or ID contains query (case-insensitive).
func (s *Service) Search(ctx context.Context, query string) ([]Item, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items, nil
	}

	var matches []Item

	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), query) ||
			strings.Contains(it.NameAr, query) ||
			strings.Contains(strings.ToLower(it.ID), query) {
			matches = append(matches, it)
		}
	}

	return matches, nil
}

// Replace validates and swaps in a full catalog snapshot.
func (s *Service) Replace(ctx context.Context, items []Item) error {
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
	}

	if err := s.repo.ReplaceItems(ctx, items); err != nil {
		return fmt.Errorf("replacing catalog: %w", err)
	}

	return nil
}

// Decrement applies optimistic local stock bookkeeping after a sale.
func (s *Service) Decrement(ctx context.Context, sold map[string]int) error {
	if len(sold) == 0 {
		return nil
	}

	adjustments := make([]StockAdjustment, 0, len(sold))
	for id, qty := range sold {
		adjustments = append(adjustments, StockAdjustment{ItemID: id, Delta: -qty})
	}

	return s.repo.AdjustStock(ctx, adjustments)
}
