package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Repository interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, id string) (Customer, error)
	ReplaceCustomers(ctx context.Context, customers []Customer) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// Search matches query against name, Arabic name and phone number.
// Phone matching ignores spaces, dashes and a leading "+".
func (s *Service) Search(ctx context.Context, query string) ([]Customer, error) {
	all, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return all, nil
	}

	lower := strings.ToLower(query)
	digits := normalizePhone(query)

	var matches []Customer

	for _, c := range all {
		switch {
		case strings.Contains(strings.ToLower(c.Name), lower),
			strings.Contains(c.NameAr, query),
			digits != "" && strings.Contains(normalizePhone(c.Phone), digits):
			matches = append(matches, c)
		}
	}

	return matches, nil
}

func (s *Service) Replace(ctx context.Context, customers []Customer) error {
	for _, c := range customers {
		if c.ID == "" {
			return fmt.Errorf("customer %q has no id", c.DisplayName())
		}

		if c.DiscountPercentage.IsNegative() || c.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("customer %s: discount %s out of range", c.ID, c.DiscountPercentage)
		}
	}

	return s.repo.ReplaceCustomers(ctx, customers)
}

func normalizePhone(s string) string {
	var b strings.Builder

	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
