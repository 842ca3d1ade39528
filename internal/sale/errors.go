package sale

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrIncompleteSale        = errors.New("cart is empty")
	ErrPaymentMethodRequired = errors.New("payment method required")
	ErrInsufficientTender    = errors.New("tendered amount is less than the total")
	ErrInvalidDiscount       = errors.New("discount must not be negative")
	ErrInvalidCustomerRate   = errors.New("customer discount must be between 0 and 100 percent")
	ErrInvalidTender         = errors.New("tendered amount must not be negative")
	ErrInvalidPaymentMethod  = errors.New("unknown payment method")
	ErrUnknownAction         = errors.New("unknown action")
)

// InvalidQuantityError rejects a quantity below 1 or above the available stock.
type InvalidQuantityError struct {
	ItemID    string
	Requested int
	Available int
}

func (e *InvalidQuantityError) Error() string {
	if e.Requested < 1 {
		return fmt.Sprintf("invalid quantity %d for %s: must be at least 1", e.Requested, e.ItemID)
	}

	return fmt.Sprintf("invalid quantity %d for %s: only %d in stock", e.Requested, e.ItemID, e.Available)
}

func (e *InvalidQuantityError) Unwrap() error { return ErrInvalidQuantity }

// InsufficientTenderError is returned when cash handed over does not cover the total.
type InsufficientTenderError struct {
	Tendered decimal.Decimal
	Total    decimal.Decimal
}

func (e *InsufficientTenderError) Error() string {
	return fmt.Sprintf("tendered %s is less than total %s", e.Tendered.StringFixed(2), e.Total.StringFixed(2))
}

func (e *InsufficientTenderError) Unwrap() error { return ErrInsufficientTender }
