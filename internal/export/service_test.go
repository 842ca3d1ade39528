package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/attar/internal/sale"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

func sampleTx(at time.Time, method sale.PaymentMethod, total int64) *transaction.Transaction {
	return &transaction.Transaction{
		ID:         uuid.New(),
		TerminalID: "T1",
		CreatedAt:  at,
		Lines: []transaction.Line{{
			ItemID: "oud-1", Name: "Cambodi Oud", NameAr: "عود كمبودي", Unit: "tola",
			Price: decimal.NewFromInt(total), TaxRate: decimal.Zero, Quantity: 1,
			Discount: decimal.Zero, Net: decimal.NewFromInt(total),
		}},
		Totals: transaction.Totals{
			Subtotal: decimal.NewFromInt(total), LineDiscount: decimal.Zero, CustomerDiscount: decimal.Zero,
			Tax: decimal.Zero, GrandTotal: decimal.NewFromInt(total),
		},
		Payment: transaction.Payment{Method: method, Tendered: decimal.Zero, Change: decimal.Zero},
		Status:  transaction.StatusSynced,
	}
}

func TestExportService_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	txs := []*transaction.Transaction{
		sampleTx(day, sale.PaymentCash, 100),
		sampleTx(day.Add(time.Hour), sale.PaymentCard, 250),
		sampleTx(day.Add(24*time.Hour), sale.PaymentCash, 40),
	}

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	filter := transaction.ListFilter{StartDate: &start, EndDate: &end}

	repo.EXPECT().ListTransactions(gomock.Any(), filter).Return(txs, nil)

	svc := NewService(transaction.NewService(repo), time.UTC)
	dir := t.TempDir()

	report, err := svc.Export(context.Background(), filter, dir)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Count)
	assert.Equal(t, []string{
		filepath.Join(dir, "attar_20260301-20260331_sales.csv"),
		filepath.Join(dir, "attar_20260301-20260331_lines.csv"),
	}, report.Files)
	require.Len(t, report.Days, 2)

	raw, err := os.ReadFile(report.Files[0])
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(raw), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "250.00", rows[2][10])

	raw, err = os.ReadFile(report.Files[1])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "عود كمبودي")

	summary := svc.GenerateSummary(report)
	assert.Equal(t,
		"* 2026-03-10 | 2 sales | VAT 0.00 | 350.00 | card 250.00, cash 100.00\n"+
			"* 2026-03-11 | 1 sales | VAT 0.00 | 40.00 | cash 40.00\n",
		summary)
}

func TestExportService_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, nil)

	svc := NewService(transaction.NewService(repo), time.UTC)

	report, err := svc.Export(context.Background(), transaction.ListFilter{}, t.TempDir())
	require.NoError(t, err)

	assert.Zero(t, report.Count)
	assert.True(t, strings.HasSuffix(report.Files[0], "attar_empty_sales.csv"))
	assert.Equal(t, "No sales in this period.\n", svc.GenerateSummary(report))
}

func TestExportService_Preview(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	repo.EXPECT().ListTransactions(gomock.Any(), transaction.ListFilter{}).Return([]*transaction.Transaction{
		sampleTx(day, sale.PaymentCash, 100),
		sampleTx(day.Add(24*time.Hour), sale.PaymentCard, 40),
	}, nil)

	svc := NewService(transaction.NewService(repo), time.UTC)

	report, err := svc.Preview(context.Background(), transaction.ListFilter{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Count)
	assert.Len(t, report.Days, 2)
	assert.Empty(t, report.Files)
	assert.Contains(t, svc.GenerateSummary(report), "2026-03-11 | 1 sales")
}
