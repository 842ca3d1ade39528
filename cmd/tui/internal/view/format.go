package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

const dbTimeout = 5 * time.Second

// FormatMoney renders an amount with two decimals. Totals are never rounded
// before this point.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTime formats a time.Time into YYYY-MM-DD HH:MM in the local zone.
func FormatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func statusLabel(s transaction.Status) string {
	switch s {
	case transaction.StatusPending:
		return errorStyle.Render("pending")
	case transaction.StatusCompleted:
		return accentStyle.Render("completed")
	case transaction.StatusSynced:
		return okStyle.Render("synced")
	}

	return string(s)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
