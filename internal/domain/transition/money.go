package transition

import "github.com/shopspring/decimal"

const (
	amountPlaces        = 2
	effectiveRatePlaces = 3
)

var hundred = decimal.NewFromInt(100)

// roundAmount arredonda para centavos, metade para longe do zero. Cada etapa
// arredonda por conta própria (item, somas do ano, total geral).
func roundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(amountPlaces)
}

func percent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}
