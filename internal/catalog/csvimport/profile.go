package csvimport

// Profile describes the column layout of a catalog export.
// Adding a new format is just adding a new Profile to the profiles slice.
type Profile struct {
	Name       string
	IDCol      string
	NameCol    string
	PriceCol   string
	NameArCol  string
	StockCol   string
	UnitCol    string
	TaxCol     string
	BarcodeCol string
	// ArabicNames means NameCol holds the Arabic name.
	ArabicNames bool
}

func (p Profile) requiredCols() []string {
	return []string{p.IDCol, p.NameCol, p.PriceCol}
}

// profiles is the ordered list of header layouts tried during auto-detection.
// Column names are compared case-insensitively.
var profiles = []Profile{
	{
		Name:       "attar",
		IDCol:      "id",
		NameCol:    "name",
		PriceCol:   "price",
		NameArCol:  "name_ar",
		StockCol:   "stock",
		UnitCol:    "unit",
		TaxCol:     "tax_rate",
		BarcodeCol: "barcode",
	},
	{
		Name:       "pos-export",
		IDCol:      "sku",
		NameCol:    "description",
		PriceCol:   "unit price",
		NameArCol:  "arabic description",
		StockCol:   "qty on hand",
		UnitCol:    "uom",
		TaxCol:     "vat %",
		BarcodeCol: "barcode",
	},
	{
		Name:        "arabic",
		IDCol:       "الرمز",
		NameCol:     "الاسم",
		PriceCol:    "السعر",
		StockCol:    "الكمية",
		UnitCol:     "الوحدة",
		TaxCol:      "الضريبة",
		BarcodeCol:  "الباركود",
		ArabicNames: true,
	},
}
