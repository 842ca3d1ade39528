// Package sale holds the point-of-sale session: the cart, the selected customer,
// the payment choice and the totals derived from them.
//
// A Session is a value. Every change goes through Reduce, which returns a new
// Session with freshly computed totals and leaves its input untouched.
package sale

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/customer"
)

// PaymentMethod is how the customer settles the sale.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentMixed    PaymentMethod = "mixed"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentMixed:
		return true
	}

	return false
}

// Line is one cart entry. Quantity is always >= 1 while the line exists.
type Line struct {
	Item     catalog.Item
	Quantity int
	Discount decimal.Decimal // per unit
}

// Gross is price x quantity.
func (l Line) Gross() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// UnitDiscount is the per-unit discount clamped to the unit price.
func (l Line) UnitDiscount() decimal.Decimal {
	return decimal.Min(l.Discount, l.Item.Price)
}

// Net is (price - discount) x quantity, never negative.
func (l Line) Net() decimal.Decimal {
	return l.Item.Price.Sub(l.UnitDiscount()).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals are derived from the cart, the customer and the tendered amount only.
type Totals struct {
	Subtotal         decimal.Decimal
	LineDiscount     decimal.Decimal
	CustomerDiscount decimal.Decimal
	Taxable          decimal.Decimal
	Tax              decimal.Decimal
	GrandTotal       decimal.Decimal
	Change           decimal.Decimal
}

// Session is the in-progress sale of one terminal.
type Session struct {
	Lines    []Line
	Customer *customer.Customer
	Payment  PaymentMethod
	Tendered decimal.Decimal
	Totals   Totals
}

// Stage is the coarse checkout state of a session.
type Stage int

const (
	StageEmpty Stage = iota
	StageBuilding
	StagePaymentSelected
)

func (s Stage) String() string {
	switch s {
	case StageEmpty:
		return "empty"
	case StageBuilding:
		return "building"
	case StagePaymentSelected:
		return "payment selected"
	}

	return "unknown"
}

// Empty returns the session a terminal starts with and returns to after every sale.
func Empty() Session {
	return Recompute(Session{Tendered: decimal.Zero})
}

func (s Session) Stage() Stage {
	switch {
	case len(s.Lines) == 0:
		return StageEmpty
	case s.Payment == "":
		return StageBuilding
	default:
		return StagePaymentSelected
	}
}

// Line returns the cart line for itemID.
func (s Session) Line(itemID string) (Line, bool) {
	if i := s.indexOf(itemID); i >= 0 {
		return s.Lines[i], true
	}

	return Line{}, false
}

// ItemCount is the number of units in the cart.
func (s Session) ItemCount() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}

	return n
}

func (s Session) indexOf(itemID string) int {
	for i, l := range s.Lines {
		if l.Item.ID == itemID {
			return i
		}
	}

	return -1
}

func (s Session) clone() Session {
	out := s
	if s.Lines != nil {
		out.Lines = make([]Line, len(s.Lines))
		copy(out.Lines, s.Lines)
	}

	return out
}
