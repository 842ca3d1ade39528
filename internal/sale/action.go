package sale

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/customer"
)

// Action is an operator request dispatched into Reduce.
type Action interface {
	isAction()
}

// AddItem adds Quantity units of Item, merging into an existing line. A zero
// Quantity means one unit.
type AddItem struct {
	Item     catalog.Item
	Quantity int
}

// UpdateQuantity replaces a line's quantity; zero or less removes the line.
type UpdateQuantity struct {
	ItemID   string
	Quantity int
}

type RemoveItem struct {
	ItemID string
}

// SetLineDiscount sets the per-unit discount of a line.
type SetLineDiscount struct {
	ItemID   string
	Discount decimal.Decimal
}

// SetCustomer selects a customer; nil makes the sale a walk-in.
type SetCustomer struct {
	Customer *customer.Customer
}

type SetPaymentMethod struct {
	Method PaymentMethod
}

type SetAmountTendered struct {
	Amount decimal.Decimal
}

// Cancel discards the session.
type Cancel struct{}

func (AddItem) isAction()           {}
func (UpdateQuantity) isAction()    {}
func (RemoveItem) isAction()        {}
func (SetLineDiscount) isAction()   {}
func (SetCustomer) isAction()       {}
func (SetPaymentMethod) isAction()  {}
func (SetAmountTendered) isAction() {}
func (Cancel) isAction()            {}

// Reduce applies a to s and returns the resulting session with recomputed totals.
// On error the returned session is s itself.
func Reduce(s Session, a Action) (Session, error) {
	next, err := apply(s.clone(), a)
	if err != nil {
		return s, err
	}

	return Recompute(next), nil
}

func apply(s Session, a Action) (Session, error) {
	switch a := a.(type) {
	case AddItem:
		return addItem(s, a)

	case UpdateQuantity:
		return updateQuantity(s, a)

	case RemoveItem:
		if i := s.indexOf(a.ItemID); i >= 0 {
			s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
		}

		return s, nil

	case SetLineDiscount:
		if a.Discount.IsNegative() {
			return s, ErrInvalidDiscount
		}

		if i := s.indexOf(a.ItemID); i >= 0 {
			s.Lines[i].Discount = a.Discount
		}

		return s, nil

	case SetCustomer:
		if a.Customer != nil {
			if pct := a.Customer.DiscountPercentage; pct.IsNegative() || pct.GreaterThan(hundred) {
				return s, fmt.Errorf("%w: %s", ErrInvalidCustomerRate, pct)
			}

			c := *a.Customer
			s.Customer = &c
		} else {
			s.Customer = nil
		}

		return s, nil

	case SetPaymentMethod:
		if !a.Method.Valid() {
			return s, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, a.Method)
		}

		s.Payment = a.Method

		return s, nil

	case SetAmountTendered:
		if a.Amount.IsNegative() {
			return s, ErrInvalidTender
		}

		s.Tendered = a.Amount

		return s, nil

	case Cancel:
		return Empty(), nil
	}

	return s, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}

func addItem(s Session, a AddItem) (Session, error) {
	qty := a.Quantity
	if qty == 0 {
		qty = 1
	}

	i := s.indexOf(a.Item.ID)

	existing := 0
	if i >= 0 {
		existing = s.Lines[i].Quantity
	}

	if qty < 1 || a.Item.Stock < existing+qty {
		return s, &InvalidQuantityError{ItemID: a.Item.ID, Requested: existing + qty, Available: a.Item.Stock}
	}

	if i >= 0 {
		s.Lines[i].Quantity += qty
		s.Lines[i].Item.Stock = a.Item.Stock

		return s, nil
	}

	s.Lines = append(s.Lines, Line{Item: a.Item, Quantity: qty, Discount: decimal.Zero})

	return s, nil
}

func updateQuantity(s Session, a UpdateQuantity) (Session, error) {
	i := s.indexOf(a.ItemID)
	if i < 0 {
		return s, nil
	}

	if a.Quantity <= 0 {
		s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
		return s, nil
	}

	if stock := s.Lines[i].Item.Stock; a.Quantity > stock {
		return s, &InvalidQuantityError{ItemID: a.ItemID, Requested: a.Quantity, Available: stock}
	}

	s.Lines[i].Quantity = a.Quantity

	return s, nil
}
