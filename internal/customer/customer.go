package customer

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("customer not found")

// Customer is a known shopper from the back-office directory.
// LoyaltyPoints is display-only on the terminal.
type Customer struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	NameAr             string          `json:"name_ar,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	Email              string          `json:"email,omitempty"`
	LoyaltyPoints      int64           `json:"loyalty_points"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// DisplayName prefers the Latin name and falls back to the Arabic one.
func (c Customer) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}

	return c.NameAr
}
