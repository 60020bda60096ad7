package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain integer", "100", "100"},
		{"comma decimal", "100,50", "100.5"},
		{"thousands separator", "1.234,56", "1234.56"},
		{"currency prefix", "R$ 1.234,56", "1234.56"},
		{"millions", "1.234.567,89", "1234567.89"},
		{"negative", "-12,34", "-12.34"},
		{"dot only is grouping", "100.00", "10000"},
		{"empty", "", "0"},
		{"letters only", "abc", "0"},
		{"garbage around digits", "total: 42,00 BRL", "42"},
		{"double minus unparseable", "--5", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"Parse(%q) = %s, want %s", tc.in, got, tc.want)
		})
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0,00"},
		{"7", "7,00"},
		{"100.5", "100,50"},
		{"1234.56", "1.234,56"},
		{"1234567.89", "1.234.567,89"},
		{"-1234.56", "-1.234,56"},
		{"999999.999", "1.000.000,00"},
	}
	for _, tc := range cases {
		got := Format(decimal.RequireFromString(tc.in))
		assert.Equal(t, tc.want, got, "Format(%s)", tc.in)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	samples := []string{
		"0.00", "0.01", "0.99", "1.00", "49.90", "100.00", "123.45",
		"999.99", "1000.00", "54321.09", "999999.99", "1234567.89",
		"9999999.99",
	}
	for _, s := range samples {
		amount := decimal.RequireFromString(s)
		back := Parse(Format(amount))
		require.True(t, back.Equal(amount), "round trip %s -> %s -> %s", s, Format(amount), back)
	}
}

func TestEqualTolerance(t *testing.T) {
	a := decimal.RequireFromString("100.00")
	assert.True(t, Equal(a, decimal.RequireFromString("100.00")))
	assert.True(t, Equal(a, decimal.RequireFromString("100.01")))
	assert.True(t, Equal(a, decimal.RequireFromString("99.99")))
	assert.False(t, Equal(a, decimal.RequireFromString("100.02")))
	assert.False(t, Equal(a, decimal.RequireFromString("99.98")))
}

func TestPercentHelpers(t *testing.T) {
	base := decimal.RequireFromString("200")
	rate := decimal.RequireFromString("5")

	assert.True(t, Percent(base, rate).Equal(decimal.RequireFromString("10")))
	assert.True(t, AddPercent(base, rate).Equal(decimal.RequireFromString("210")))

	// StripPercent inverts AddPercent within cent rounding.
	stripped := StripPercent(decimal.RequireFromString("210"), rate)
	assert.True(t, stripped.Equal(base), "got %s", stripped)

	uneven := StripPercent(decimal.RequireFromString("100"), decimal.RequireFromString("3"))
	assert.True(t, uneven.Equal(decimal.RequireFromString("97.09")), "got %s", uneven)
}
