package sale

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Recompute derives the totals of s from its lines, customer and tendered amount.
//
// Order matters and is fixed: line discounts come off first, the customer's
// percentage applies to what remains, and tax is charged per line at the line's
// own rate on the line's share after both discounts.
func Recompute(s Session) Session {
	var (
		subtotal     = decimal.Zero
		lineDiscount = decimal.Zero
		tax          = decimal.Zero
		pct          = decimal.Zero
	)

	if s.Customer != nil {
		pct = s.Customer.DiscountPercentage
	}

	for _, l := range s.Lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		subtotal = subtotal.Add(l.Gross())
		lineDiscount = lineDiscount.Add(l.UnitDiscount().Mul(qty))

		net := l.Net()
		net = decimal.Max(decimal.Zero, net.Sub(net.Mul(pct).Div(hundred)))
		tax = tax.Add(net.Mul(l.Item.TaxRate).Div(hundred))
	}

	afterLines := subtotal.Sub(lineDiscount)
	customerDiscount := afterLines.Mul(pct).Div(hundred)
	taxable := decimal.Max(decimal.Zero, afterLines.Sub(customerDiscount))
	grand := taxable.Add(tax)

	change := decimal.Zero
	if s.Tendered.IsPositive() {
		change = decimal.Max(decimal.Zero, s.Tendered.Sub(grand))
	}

	s.Totals = Totals{
		Subtotal:         subtotal,
		LineDiscount:     lineDiscount,
		CustomerDiscount: customerDiscount,
		Taxable:          taxable,
		Tax:              tax,
		GrandTotal:       grand,
		Change:           change,
	}

	return s
}
