package transition

import (
	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/shopspring/decimal"
)

// ProjectLine calcula o item de um ano futuro só com o cronograma.
// As alíquotas informadas são as nominais, não valor/base.
func (e *Engine) ProjectLine(entry domain.YearScheduleEntry, line domain.InvoiceLine) domain.LineResult {
	base := line.TaxBase
	cbs := roundAmount(base.Mul(entry.CBSRate))
	ibs := roundAmount(base.Mul(entry.IBSRate))

	selective := decimal.Zero
	var match *domain.SelectiveTaxMatch
	if entry.SelectiveTaxApplies {
		if cat, ok := e.classifier.Classify(line.CommodityCode); ok {
			match = &domain.SelectiveTaxMatch{Rate: cat.Rate, Description: cat.Description}
			selective = roundAmount(base.Mul(cat.Rate))
		}
	}

	return domain.LineResult{
		Number:           line.Number,
		CommodityCode:    line.CommodityCode,
		Description:      describe(line, line.Number),
		TaxBase:          base,
		CBS:              cbs,
		IBS:              ibs,
		SelectiveTax:     selective,
		SelectiveTaxInfo: match,
		CBSRate:          percent(entry.CBSRate),
		IBSRate:          percent(entry.IBSRate),
		Total:            roundAmount(cbs.Add(ibs).Add(selective)),
	}
}
