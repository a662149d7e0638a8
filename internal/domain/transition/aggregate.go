package transition

import (
	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/shopspring/decimal"
)

// Aggregate soma os valores dos itens nos totais do ano. Ano sem itens é tudo zero.
func Aggregate(lines []domain.LineResult, legacy LegacyResidual) domain.YearTotals {
	var cbs, ibs, selective decimal.Decimal
	for _, l := range lines {
		cbs = cbs.Add(l.CBS)
		ibs = ibs.Add(l.IBS)
		selective = selective.Add(l.SelectiveTax)
	}

	t := domain.YearTotals{
		CBS:          roundAmount(cbs),
		IBS:          roundAmount(ibs),
		SelectiveTax: roundAmount(selective),
		ICMS:         legacy.ICMS,
		PISCOFINS:    legacy.PISCOFINS,
		IPI:          legacy.IPI,
		Legacy:       legacy.Total,
	}
	t.VAT = roundAmount(t.CBS.Add(t.IBS).Add(t.SelectiveTax))
	t.Grand = roundAmount(t.VAT.Add(t.Legacy))
	return t
}

// EffectiveRates recalcula as alíquotas efetivas de CBS/IBS (percentual, 3 casas)
// sobre todos os itens. Base zero dá alíquota zero.
func EffectiveRates(lines []domain.LineResult, totals domain.YearTotals) domain.EffectiveRates {
	var base decimal.Decimal
	for _, l := range lines {
		base = base.Add(l.TaxBase)
	}
	if base.IsZero() {
		return domain.EffectiveRates{CBS: decimal.Zero, IBS: decimal.Zero}
	}
	return domain.EffectiveRates{
		CBS: totals.CBS.Div(base).Mul(hundred).Round(effectiveRatePlaces),
		IBS: totals.IBS.Div(base).Mul(hundred).Round(effectiveRatePlaces),
	}
}
