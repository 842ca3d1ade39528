package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/attar/internal/sale"
)

var (
	ErrNotFound          = errors.New("transaction not found")
	ErrDuplicate         = errors.New("transaction already recorded")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Status tracks how far a completed sale has travelled towards the back office.
type Status string

const (
	StatusPending   Status = "pending"   // recorded while offline
	StatusCompleted Status = "completed" // recorded while online, not yet confirmed
	StatusSynced    Status = "synced"    // acknowledged by the back office
)

// CanAdvance reports whether a transaction may move from s to next.
// The only forward move is into synced; nothing ever leaves synced.
func (s Status) CanAdvance(next Status) bool {
	return next == StatusSynced && (s == StatusPending || s == StatusCompleted)
}

// Line is the frozen copy of a cart line at completion time.
type Line struct {
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	NameAr   string          `json:"name_ar,omitempty"`
	Unit     string          `json:"unit"`
	Price    decimal.Decimal `json:"price"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
	Quantity int             `json:"quantity"`
	Discount decimal.Decimal `json:"discount"`
	Net      decimal.Decimal `json:"net"`
}

// Totals mirrors sale.Totals with wire names.
type Totals struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	LineDiscount     decimal.Decimal `json:"line_discount"`
	CustomerDiscount decimal.Decimal `json:"customer_discount"`
	Taxable          decimal.Decimal `json:"taxable"`
	Tax              decimal.Decimal `json:"tax"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
}

type Payment struct {
	Method   sale.PaymentMethod `json:"method"`
	Tendered decimal.Decimal    `json:"tendered"`
	Change   decimal.Decimal    `json:"change"`
}

// Transaction is the immutable record of a completed sale. Only Status and
// SyncedAt ever change after creation.
type Transaction struct {
	ID           uuid.UUID  `json:"id"`
	TerminalID   string     `json:"terminal_id"`
	CreatedAt    time.Time  `json:"created_at"`
	Lines        []Line     `json:"lines"`
	CustomerID   string     `json:"customer_id,omitempty"`
	CustomerName string     `json:"customer_name,omitempty"`
	Totals       Totals     `json:"totals"`
	Payment      Payment    `json:"payment"`
	Status       Status     `json:"status"`
	SyncedAt     *time.Time `json:"synced_at,omitempty"`
}

// FromSession snapshots a checked-out session.
func FromSession(id uuid.UUID, terminalID string, at time.Time, status Status, s sale.Session) *Transaction {
	lines := make([]Line, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = Line{
			ItemID:   l.Item.ID,
			Name:     l.Item.Name,
			NameAr:   l.Item.NameAr,
			Unit:     l.Item.Unit,
			Price:    l.Item.Price,
			TaxRate:  l.Item.TaxRate,
			Quantity: l.Quantity,
			Discount: l.UnitDiscount(),
			Net:      l.Net(),
		}
	}

	tx := &Transaction{
		ID:         id,
		TerminalID: terminalID,
		CreatedAt:  at,
		Lines:      lines,
		Totals: Totals{
			Subtotal:         s.Totals.Subtotal,
			LineDiscount:     s.Totals.LineDiscount,
			CustomerDiscount: s.Totals.CustomerDiscount,
			Taxable:          s.Totals.Taxable,
			Tax:              s.Totals.Tax,
			GrandTotal:       s.Totals.GrandTotal,
		},
		Payment: Payment{
			Method:   s.Payment,
			Tendered: decimal.Zero,
			Change:   decimal.Zero,
		},
		Status: status,
	}

	if s.Payment == sale.PaymentCash {
		tx.Payment.Tendered = s.Tendered
		tx.Payment.Change = s.Totals.Change
	}

	if s.Customer != nil {
		tx.CustomerID = s.Customer.ID
		tx.CustomerName = s.Customer.DisplayName()
	}

	return tx
}

// Quantities sums sold units per item.
func (t *Transaction) Quantities() map[string]int {
	out := make(map[string]int, len(t.Lines))
	for _, l := range t.Lines {
		out[l.ItemID] += l.Quantity
	}

	return out
}
