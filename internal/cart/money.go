package cart

import "github.com/shopspring/decimal"

// FormatAmount rounds v to two decimal places for display. Arithmetic
// elsewhere stays unrounded.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
