// Package csvimport loads a terminal catalog from a spreadsheet export so a
// till can boot without the back office.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
	enc "github.com/MrJamesThe3rd/attar/internal/encoding"
)

var ErrUnknownFormat = errors.New("no matching catalog format found")

type Options struct {
	// Charset is used when the file is not UTF-8, e.g. "windows-1256".
	// Empty means detect.
	Charset string
	// DefaultTaxRate applies to rows without a tax column value.
	DefaultTaxRate decimal.Decimal
	// DefaultUnit applies to rows without a unit.
	DefaultUnit string
}

type Parser struct {
	opts Options
}

func NewParser(opts Options) *Parser {
	if opts.DefaultUnit == "" {
		opts.DefaultUnit = "piece"
	}

	return &Parser{opts: opts}
}

// Parse reads a catalog export. Blank rows are skipped; any other bad row
// fails the whole file so a till never boots on a half-read catalog.
func (p *Parser) Parse(r io.Reader) ([]catalog.Item, error) {
	utf8r, err := enc.NewUTF8Reader(r, p.opts.Charset)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(raw)))
	reader.Comma = sniffDelimiter(string(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrUnknownFormat
	}

	return p.parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

// sniffDelimiter picks ';' or '\t' when the first line uses them more than commas.
func sniffDelimiter(s string) rune {
	first, _, _ := strings.Cut(s, "\n")

	best, n := ',', strings.Count(first, ",")
	for _, d := range []rune{';', '\t'} {
		if c := strings.Count(first, string(d)); c > n {
			best, n = d, c
		}
	}

	return best
}

type colIndex map[string]int

func (c colIndex) get(row []string, name string) string {
	if name == "" {
		return ""
	}

	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func (p *Parser) parseRows(profile *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]catalog.Item, error) {
	var items []catalog.Item

	seen := make(map[string]int)

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		if blank(row) {
			continue
		}

		item, err := p.parseRow(profile, cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if prev, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("row %d: duplicate id %q (first on row %d)", rowNum, item.ID, prev)
		}

		seen[item.ID] = rowNum

		items = append(items, item)
	}

	return items, nil
}

func (p *Parser) parseRow(profile *Profile, cols colIndex, row []string) (catalog.Item, error) {
	item := catalog.Item{
		ID:      cols.get(row, profile.IDCol),
		Name:    cols.get(row, profile.NameCol),
		NameAr:  cols.get(row, profile.NameArCol),
		Unit:    cols.get(row, profile.UnitCol),
		Barcode: cols.get(row, profile.BarcodeCol),
		TaxRate: p.opts.DefaultTaxRate,
	}

	if profile.ArabicNames {
		item.NameAr = item.Name
	}

	if item.ID == "" {
		return item, fmt.Errorf("missing id")
	}

	if item.Name == "" {
		return item, fmt.Errorf("missing name for %s", item.ID)
	}

	if item.Unit == "" {
		item.Unit = p.opts.DefaultUnit
	}

	price, err := parseAmount(cols.get(row, profile.PriceCol))
	if err != nil {
		return item, fmt.Errorf("price for %s: %w", item.ID, err)
	}

	item.Price = price

	if s := cols.get(row, profile.StockCol); s != "" {
		stock, err := parseAmount(s)
		if err != nil || !stock.IsInteger() {
			return item, fmt.Errorf("stock for %s: not a whole number: %q", item.ID, s)
		}

		item.Stock = int(stock.IntPart())
	}

	if s := cols.get(row, profile.TaxCol); s != "" {
		rate, err := parseAmount(s)
		if err != nil {
			return item, fmt.Errorf("tax rate for %s: %w", item.ID, err)
		}

		item.TaxRate = rate
	}

	if err := item.Validate(); err != nil {
		return item, err
	}

	return item, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
