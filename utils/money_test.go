package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSplitTaxInclusive(t *testing.T) {
	rate := decimal.RequireFromString("0.06")
	cases := []struct {
		total, pretax, tax string
	}{
		{"10600", "10000.00", "600.00"},
		{"106", "100.00", "6.00"},
		{"100", "94.34", "5.66"},
		{"0.01", "0.01", "0.00"},
		{"0", "0.00", "0.00"},
	}
	for _, tc := range cases {
		total := decimal.RequireFromString(tc.total)
		pretax, tax := SplitTaxInclusive(total, rate)
		require.Equal(t, tc.pretax, pretax.StringFixed(2), tc.total)
		require.Equal(t, tc.tax, tax.StringFixed(2), tc.total)
		require.True(t, pretax.Add(tax).Equal(RoundMoney(total)), tc.total)
	}
}

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "5000.00", FormatMoney(decimal.NewFromInt(5000)))
	require.Equal(t, "12.35", FormatMoney(decimal.RequireFromString("12.345")))
	require.Equal(t, "-7.50", FormatMoney(decimal.RequireFromString("-7.5")))
}
