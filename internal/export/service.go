package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/attar/internal/sale"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

// Report describes one export run.
type Report struct {
	Count int
	Files []string
	Days  []transaction.DaySummary
}

// Service writes end-of-day sales exports for the accountant.
type Service struct {
	transactions *transaction.Service
	loc          *time.Location
}

// NewService creates a new export Service. Days are cut in loc.
func NewService(txService *transaction.Service, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}

	return &Service{transactions: txService, loc: loc}
}

// Export writes the transactions matching filter to two CSV files in outputDir:
// one row per sale and one row per sold line.
func (s *Service) Export(ctx context.Context, filter transaction.ListFilter, outputDir string) (Report, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return Report{}, fmt.Errorf("listing transactions: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Report{}, fmt.Errorf("creating output directory: %w", err)
	}

	stem := s.stem(filter, txs)

	salesPath := filepath.Join(outputDir, stem+"_sales.csv")
	if err := writeCSV(salesPath, s.salesRows(txs)); err != nil {
		return Report{}, fmt.Errorf("writing sales: %w", err)
	}

	linesPath := filepath.Join(outputDir, stem+"_lines.csv")
	if err := writeCSV(linesPath, s.lineRows(txs)); err != nil {
		return Report{}, fmt.Errorf("writing lines: %w", err)
	}

	return Report{
		Count: len(txs),
		Files: []string{salesPath, linesPath},
		Days:  transaction.Summarize(txs, s.loc),
	}, nil
}

// stem names the files after the exported range, e.g. 20260301-20260331.
func (s *Service) stem(filter transaction.ListFilter, txs []*transaction.Transaction) string {
	var start, end time.Time

	switch {
	case filter.StartDate != nil && filter.EndDate != nil:
		start, end = *filter.StartDate, *filter.EndDate
	case len(txs) > 0:
		start, end = txs[0].CreatedAt, txs[len(txs)-1].CreatedAt
	default:
		return "attar_empty"
	}

	return fmt.Sprintf("attar_%s-%s", start.In(s.loc).Format("20060102"), end.In(s.loc).Format("20060102"))
}

func (s *Service) salesRows(txs []*transaction.Transaction) [][]string {
	rows := [][]string{{
		"id", "created_at", "terminal", "status", "customer", "payment_method",
		"subtotal", "line_discount", "customer_discount", "tax", "grand_total", "tendered", "change",
	}}

	for _, tx := range txs {
		t := tx.Totals
		rows = append(rows, []string{
			tx.ID.String(),
			tx.CreatedAt.In(s.loc).Format(time.RFC3339),
			tx.TerminalID,
			string(tx.Status),
			tx.CustomerName,
			string(tx.Payment.Method),
			t.Subtotal.StringFixed(2),
			t.LineDiscount.StringFixed(2),
			t.CustomerDiscount.StringFixed(2),
			t.Tax.StringFixed(2),
			t.GrandTotal.StringFixed(2),
			tx.Payment.Tendered.StringFixed(2),
			tx.Payment.Change.StringFixed(2),
		})
	}

	return rows
}

func (s *Service) lineRows(txs []*transaction.Transaction) [][]string {
	rows := [][]string{{"transaction_id", "item_id", "name", "name_ar", "unit", "quantity", "price", "discount", "net", "tax_rate"}}

	for _, tx := range txs {
		for _, l := range tx.Lines {
			rows = append(rows, []string{
				tx.ID.String(),
				l.ItemID,
				l.Name,
				l.NameAr,
				l.Unit,
				strconv.Itoa(l.Quantity),
				l.Price.StringFixed(2),
				l.Discount.StringFixed(2),
				l.Net.StringFixed(2),
				l.TaxRate.String(),
			})
		}
	}

	return rows
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	// UTF-8 BOM so spreadsheet tools show Arabic names correctly.
	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}

	return f.Close()
}

// Preview reports what Export would write for filter without touching disk.
func (s *Service) Preview(ctx context.Context, filter transaction.ListFilter) (Report, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return Report{}, fmt.Errorf("listing transactions: %w", err)
	}

	return Report{Count: len(txs), Days: transaction.Summarize(txs, s.loc)}, nil
}

// Location is the zone days are cut in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// GenerateSummary renders the per-day totals of a report as plain text.
func (s *Service) GenerateSummary(r Report) string {
	var sb strings.Builder

	for _, d := range r.Days {
		methods := make([]string, 0, len(d.ByMethod))
		for m := range d.ByMethod {
			methods = append(methods, string(m))
		}

		sort.Strings(methods)

		parts := make([]string, len(methods))
		for i, m := range methods {
			parts[i] = fmt.Sprintf("%s %s", m, d.ByMethod[sale.PaymentMethod(m)].StringFixed(2))
		}

		sb.WriteString(fmt.Sprintf("* %s | %d sales | VAT %s | %s | %s\n",
			d.Date.Format("2006-01-02"), d.Count, d.Tax.StringFixed(2), d.Total.StringFixed(2), strings.Join(parts, ", ")))
	}

	if sb.Len() == 0 {
		return "No sales in this period.\n"
	}

	return sb.String()
}
