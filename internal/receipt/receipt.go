// Package receipt lays out completed transactions for the screen and for
// thermal printers.
package receipt

import (
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

type Options struct {
	StoreName   string
	StoreNameAr string
	Currency    string
	Footer      string
	// Width in characters: 32 for 58mm paper, 48 for 80mm.
	Width    int
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 32
	}

	if o.Location == nil {
		o.Location = time.Local
	}

	if o.Footer == "" {
		o.Footer = "Thank you - شكراً لزيارتكم"
	}

	return o
}

type align int

const (
	alignLeft align = iota
	alignCenter
)

type line struct {
	left  string
	right string
	align align
	bold  bool
	rule  rune
}

func layout(tx *transaction.Transaction, o Options) []line {
	money := func(d decimal.Decimal) string {
		if o.Currency == "" {
			return d.StringFixed(2)
		}

		return o.Currency + " " + d.StringFixed(2)
	}

	var out []line

	if o.StoreName != "" {
		out = append(out, line{left: o.StoreName, align: alignCenter, bold: true})
	}

	if o.StoreNameAr != "" {
		out = append(out, line{left: o.StoreNameAr, align: alignCenter})
	}

	out = append(out,
		line{rule: '='},
		line{left: "No.", right: shortID(tx)},
		line{left: "Date", right: tx.CreatedAt.In(o.Location).Format("2006-01-02 15:04")},
		line{left: "Terminal", right: tx.TerminalID},
	)

	if tx.CustomerName != "" {
		out = append(out, line{left: "Customer", right: tx.CustomerName})
	}

	out = append(out, line{rule: '-'})

	for _, l := range tx.Lines {
		gross := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))

		out = append(out, line{left: strconv.Itoa(l.Quantity) + "x " + l.Name, right: money(gross)})

		if l.NameAr != "" {
			out = append(out, line{left: "   " + l.NameAr})
		}

		if l.Discount.IsPositive() {
			out = append(out, line{left: "   discount", right: "-" + money(gross.Sub(l.Net))})
		}
	}

	t := tx.Totals

	out = append(out, line{rule: '-'}, line{left: "Subtotal", right: money(t.Subtotal)})

	if t.LineDiscount.IsPositive() {
		out = append(out, line{left: "Item discounts", right: "-" + money(t.LineDiscount)})
	}

	if t.CustomerDiscount.IsPositive() {
		out = append(out, line{left: "Customer discount", right: "-" + money(t.CustomerDiscount)})
	}

	out = append(out,
		line{left: "VAT", right: money(t.Tax)},
		line{left: "TOTAL", right: money(t.GrandTotal), bold: true},
		line{left: "Paid by", right: string(tx.Payment.Method)},
	)

	if tx.Payment.Tendered.IsPositive() {
		out = append(out,
			line{left: "Tendered", right: money(tx.Payment.Tendered)},
			line{left: "Change", right: money(tx.Payment.Change)},
		)
	}

	if tx.Status == transaction.StatusPending {
		out = append(out, line{left: "* recorded offline *", align: alignCenter})
	}

	return append(out, line{rule: '='}, line{left: o.Footer, align: alignCenter})
}

// Render returns the receipt as fixed-width plain text.
func Render(tx *transaction.Transaction, opts Options) string {
	opts = opts.withDefaults()

	var sb strings.Builder

	for _, l := range layout(tx, opts) {
		sb.WriteString(format(l, opts.Width))
		sb.WriteByte('\n')
	}

	return sb.String()
}

func format(l line, width int) string {
	if l.rule != 0 {
		return strings.Repeat(string(l.rule), width)
	}

	if l.right == "" {
		text := runewidth.Truncate(l.left, width, "")
		if l.align == alignCenter {
			pad := (width - runewidth.StringWidth(text)) / 2
			return strings.Repeat(" ", pad) + text
		}

		return text
	}

	right := runewidth.Truncate(l.right, width, "")

	room := width - runewidth.StringWidth(right) - 1
	if room < 0 {
		room = 0
	}

	left := runewidth.Truncate(l.left, room, "~")
	gap := width - runewidth.StringWidth(left) - runewidth.StringWidth(right)

	return left + strings.Repeat(" ", max(gap, 1)) + right
}

func shortID(tx *transaction.Transaction) string {
	return strings.ToUpper(tx.ID.String()[:8])
}
