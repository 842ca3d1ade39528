package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/attar/internal/sale"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

type transactionResponse struct {
	ID            uuid.UUID          `json:"id"`
	TerminalID    string             `json:"terminal_id"`
	CreatedAt     time.Time          `json:"created_at"`
	Status        transaction.Status `json:"status"`
	SyncedAt      *time.Time         `json:"synced_at,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	PaymentMethod sale.PaymentMethod `json:"payment_method"`
	Items         int                `json:"items"`
	Tax           string             `json:"tax"`
	GrandTotal    string             `json:"grand_total"`
}

type daySummaryResponse struct {
	Date     string            `json:"date"`
	Count    int               `json:"count"`
	Tax      string            `json:"tax"`
	Total    string            `json:"total"`
	ByMethod map[string]string `json:"by_method"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	items := 0
	for _, l := range tx.Lines {
		items += l.Quantity
	}

	return transactionResponse{
		ID:            tx.ID,
		TerminalID:    tx.TerminalID,
		CreatedAt:     tx.CreatedAt,
		Status:        tx.Status,
		SyncedAt:      tx.SyncedAt,
		CustomerName:  tx.CustomerName,
		PaymentMethod: tx.Payment.Method,
		Items:         items,
		Tax:           tx.Totals.Tax.StringFixed(2),
		GrandTotal:    tx.Totals.GrandTotal.StringFixed(2),
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

func toSummaryResponse(days []transaction.DaySummary) []daySummaryResponse {
	resp := make([]daySummaryResponse, len(days))

	for i, d := range days {
		byMethod := make(map[string]string, len(d.ByMethod))
		for m, total := range d.ByMethod {
			byMethod[string(m)] = total.StringFixed(2)
		}

		resp[i] = daySummaryResponse{
			Date:     d.Date.Format(time.DateOnly),
			Count:    d.Count,
			Tax:      d.Tax.StringFixed(2),
			Total:    d.Total.StringFixed(2),
			ByMethod: byMethod,
		}
	}

	return resp
}
