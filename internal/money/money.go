// Package money holds the currency helpers shared by the sales composer,
// the profit trigger, and the HTTP layer. Amounts are decimal values in a
// comma-decimal locale: dot groups thousands, comma separates cents.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ReconcileTolerance is the absolute tolerance applied when payment amounts
// are reconciled against computed totals. Two amounts within one cent of each
// other are considered equal.
var ReconcileTolerance = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// Parse converts free-form user input into a decimal amount. Everything but
// digits, comma, dot, and minus is discarded; dots are treated as thousands
// separators and the comma as the decimal separator. Unparseable input yields
// zero rather than an error so callers never block on partial typing.
func Parse(text string) decimal.Decimal {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := strings.ReplaceAll(b.String(), ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format renders an amount with exactly two fraction digits in comma-decimal
// style, e.g. 1234567.5 -> "1.234.567,50". Format is the inverse of Parse for
// any amount already rounded to two decimals.
func Format(d decimal.Decimal) string {
	fixed := d.Round(2).StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	if negative {
		fixed = fixed[1:]
	}
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}

// Equal reports whether two amounts match within ReconcileTolerance.
func Equal(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(ReconcileTolerance)
}

// Percent returns base scaled by ratePercent/100.
func Percent(base, ratePercent decimal.Decimal) decimal.Decimal {
	return base.Mul(ratePercent).Div(hundred)
}

// AddPercent returns base grown by ratePercent, i.e. base * (1 + rate/100).
func AddPercent(base, ratePercent decimal.Decimal) decimal.Decimal {
	return base.Add(Percent(base, ratePercent))
}

// StripPercent inverts AddPercent: it returns the amount that, once grown by
// ratePercent, reproduces total. The result is rounded to cents.
func StripPercent(total, ratePercent decimal.Decimal) decimal.Decimal {
	return total.DivRound(hundred.Add(ratePercent).Div(hundred), 2)
}
