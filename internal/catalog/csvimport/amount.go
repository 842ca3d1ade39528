package csvimport

import (
	"strings"

	"github.com/shopspring/decimal"
)

var digits = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"٫", ".", "٬", ",",
)

// parseAmount reads prices written as "1,234.50", "1.234,50", "950" or with
// Arabic-Indic digits. A trailing currency code or % sign is ignored.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := digits.Replace(strings.TrimSpace(s))
	clean = strings.TrimSpace(strings.TrimRightFunc(clean, func(r rune) bool {
		return r == '%' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == ' '
	}))
	clean = strings.ReplaceAll(clean, " ", "")

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastComma > lastDot && lastDot >= 0:
		// 1.234,50
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case lastComma > lastDot:
		// 12,50 or 1,234
		if len(clean)-lastComma-1 == 3 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.Replace(clean, ",", ".", 1)
		}
	default:
		// 1,234.50
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
