package transition

import (
	"github.com/Victor-armando18/service-tax-transition/internal/domain"
)

// ExtractLive converte a resposta da calculadora para o ano ao vivo. O IS já
// veio aplicado pela calculadora, então nenhuma categoria é anexada.
func (e *Engine) ExtractLive(results []domain.ExternalLineResult, idx LineIndex) []domain.LineResult {
	out := make([]domain.LineResult, 0, len(results))
	for _, r := range results {
		out = append(out, extractLine(r, idx, nil))
	}
	return out
}

// ExtractAuthoritative é o ExtractLive das chamadas por ano: itens que pagaram
// IS recebem a categoria local para exibição.
func (e *Engine) ExtractAuthoritative(results []domain.ExternalLineResult, idx LineIndex) []domain.LineResult {
	out := make([]domain.LineResult, 0, len(results))
	for _, r := range results {
		var match *domain.SelectiveTaxMatch
		if r.SelectiveTaxAmount.IsPositive() {
			match = e.classifier.Match(idx[r.LineID].CommodityCode)
		}
		out = append(out, extractLine(r, idx, match))
	}
	return out
}

func extractLine(r domain.ExternalLineResult, idx LineIndex, match *domain.SelectiveTaxMatch) domain.LineResult {
	line := idx[r.LineID]
	return domain.LineResult{
		Number:           r.LineID,
		CommodityCode:    line.CommodityCode,
		Description:      describe(line, r.LineID),
		TaxBase:          r.TaxBase,
		CBS:              roundAmount(r.CBSAmount),
		IBS:              roundAmount(r.IBSAmount),
		SelectiveTax:     roundAmount(r.SelectiveTaxAmount),
		SelectiveTaxInfo: match,
		CBSRate:          r.CBSRate,
		IBSRate:          r.IBSRate(),
		Total:            roundAmount(r.CBSAmount.Add(r.IBSAmount).Add(r.SelectiveTaxAmount)),
	}
}
