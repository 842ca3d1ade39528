package csvimport_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/catalog/csvimport"
)

var vat = decimal.NewFromInt(5)

func TestParser_Parse(t *testing.T) {
	type testCase struct {
		name    string
		csv     string
		wantLen int
		verify  func(t *testing.T, items []catalog.Item)
		wantErr error
		errText string
	}

	tests := []testCase{
		{
			name: "native export",
			csv: `id,name,name_ar,price,stock,unit,tax_rate,barcode
oud-1,Cambodi Oud,عود كمبودي,"2,500.00",3,tola,5,6291100000017
musk-2,White Musk,مسك أبيض,120,40,ml,,
`,
			wantLen: 2,
			verify: func(t *testing.T, items []catalog.Item) {
				assert.Equal(t, "oud-1", items[0].ID)
				assert.Equal(t, "عود كمبودي", items[0].NameAr)
				assert.True(t, items[0].Price.Equal(decimal.NewFromInt(2500)))
				assert.Equal(t, 3, items[0].Stock)
				assert.Equal(t, "6291100000017", items[0].Barcode)

				assert.True(t, items[1].TaxRate.Equal(vat))
				assert.Equal(t, "ml", items[1].Unit)
			},
		},
		{
			name: "semicolon export with preamble and european amounts",
			csv: `Stock report;01-03-2026

SKU;Description;Unit Price;Qty On Hand;UOM;VAT %
AMB-9;Amber Attar;1.250,50;2;tola;5%
ROSE-1;Taif Rose;95;;;0
`,
			wantLen: 2,
			verify: func(t *testing.T, items []catalog.Item) {
				assert.True(t, items[0].Price.Equal(decimal.RequireFromString("1250.5")))
				assert.Equal(t, "tola", items[0].Unit)
				assert.Equal(t, 0, items[1].Stock)
				assert.Equal(t, "piece", items[1].Unit)
				assert.True(t, items[1].TaxRate.IsZero())
			},
		},
		{
			name: "arabic headers and digits",
			csv: `الرمز,الاسم,السعر,الكمية
A1,دهن العود,٩٥٠,٤
`,
			wantLen: 1,
			verify: func(t *testing.T, items []catalog.Item) {
				assert.Equal(t, "دهن العود", items[0].Name)
				assert.Equal(t, "دهن العود", items[0].NameAr)
				assert.True(t, items[0].Price.Equal(decimal.NewFromInt(950)))
				assert.Equal(t, 4, items[0].Stock)
			},
		},
		{
			name:    "unknown layout",
			csv:     "foo,bar\n1,2\n",
			wantErr: csvimport.ErrUnknownFormat,
		},
		{
			name:    "bad price",
			csv:     "id,name,price\nx,Oud,abc\n",
			errText: "row 2",
		},
		{
			name:    "negative stock",
			csv:     "id,name,price,stock\nx,Oud,10,-1\n",
			wantErr: catalog.ErrInvalidItem,
		},
		{
			name:    "duplicate id",
			csv:     "id,name,price\nx,Oud,10\nx,Musk,12\n",
			errText: "duplicate id",
		},
		{
			name:    "header only",
			csv:     "id,name,price\n",
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := csvimport.NewParser(csvimport.Options{DefaultTaxRate: vat})

			got, err := p.Parse(strings.NewReader(tt.csv))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			if tt.errText != "" {
				assert.ErrorContains(t, err, tt.errText)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)

			if tt.verify != nil {
				tt.verify(t, got)
			}
		})
	}
}

func TestParser_Windows1256(t *testing.T) {
	src := "id,name,name_ar,price\noud-1,Cambodi Oud,عود كمبودي,2500\n"

	encoded, err := charmap.Windows1256.NewEncoder().Bytes([]byte(src))
	require.NoError(t, err)

	p := csvimport.NewParser(csvimport.Options{Charset: "windows-1256"})

	items, err := p.Parse(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "عود كمبودي", items[0].NameAr)
}
