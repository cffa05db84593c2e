package utils

import "github.com/shopspring/decimal"

const MoneyPlaces = 2

func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// SplitTaxInclusive treats total as tax-inclusive and back-computes
// pretax = round(total / (1+rate), 2) and tax = round(total - pretax, 2),
// so pretax + tax always equals total at two decimals.
func SplitTaxInclusive(total decimal.Decimal, rate decimal.Decimal) (pretax decimal.Decimal, tax decimal.Decimal) {
	divisor := decimal.NewFromInt(1).Add(rate)
	pretax = total.DivRound(divisor, 8).Round(MoneyPlaces)
	tax = RoundMoney(total.Sub(pretax))
	return pretax, tax
}

// FormatMoney renders an amount the way milestone titles and notes show it.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}
