package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Grouped renders v rounded half away from zero to two decimals with comma
// thousands separators: 160550 -> "160,550.00". Rounding applies to the
// shortest decimal form of v, so 2.675 gives "2.68". NaN and Inf are
// rendered as-is.
func Grouped(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := decimal.NewFromFloat(v).Round(2).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// USD renders "$1,900.00".
func USD(v float64) string {
	return "$" + Grouped(v)
}

// INR renders "₹160,550.00".
func INR(v float64) string {
	return "₹" + Grouped(v)
}

// Rate renders an exchange rate with two decimals and no grouping.
func Rate(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
