package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCurrencyIDR formats an amount in Indonesian Rupiah.
// Example: 15000.50 -> "Rp 15.000,50"
func FormatCurrencyIDR(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	integer := cents / 100
	decimal := cents % 100

	// thousands separated by "."
	digits := strconv.FormatInt(integer, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	if decimal > 0 {
		return fmt.Sprintf("%sRp %s,%02d", sign, b.String(), decimal)
	}
	return fmt.Sprintf("%sRp %s", sign, b.String())
}
