package catalog

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("item not found")
	ErrInvalidItem = errors.New("invalid item")
)

var hundred = decimal.NewFromInt(100)

// Item is a sellable product as supplied by the back office.
type Item struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	NameAr  string          `json:"name_ar,omitempty"`
	Price   decimal.Decimal `json:"price"`
	Stock   int             `json:"stock"`
	Unit    string          `json:"unit"`
	TaxRate decimal.Decimal `json:"tax_rate"` // percentage, 0-100
	Barcode string          `json:"barcode,omitempty"`
}

// Validate checks the invariants the sale machine relies on.
func (i Item) Validate() error {
	switch {
	case i.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidItem)
	case i.Price.IsNegative():
		return fmt.Errorf("%w: %s has negative price", ErrInvalidItem, i.ID)
	case i.Stock < 0:
		return fmt.Errorf("%w: %s has negative stock", ErrInvalidItem, i.ID)
	case i.TaxRate.IsNegative() || i.TaxRate.GreaterThan(hundred):
		return fmt.Errorf("%w: %s tax rate %s out of range", ErrInvalidItem, i.ID, i.TaxRate)
	}

	return nil
}

// StockAdjustment is a signed change to an item's stock.
type StockAdjustment struct {
	ItemID string
	Delta  int
}
