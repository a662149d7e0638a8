package calculator

import (
	"encoding/json"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/shopspring/decimal"
)

// LiveResult é o bloco "resultado2026" de sempre: os objetos da calculadora e
// um total agregado com valores em string de duas casas.
type LiveResult struct {
	Objects []json.RawMessage `json:"objetos"`
	Total   LegacyTotal       `json:"total"`
}

type LegacyTotal struct {
	TribCalc struct {
		IBSCBSTot IBSCBSTotal `json:"IBSCBSTot"`
	} `json:"tribCalc"`
}

type IBSCBSTotal struct {
	Base string `json:"vBCIBSCBS"`
	IBS  struct {
		Amount string `json:"vIBS"`
	} `json:"gIBS"`
	CBS struct {
		Amount string `json:"vCBS"`
	} `json:"gCBS"`
	IS struct {
		Amount string `json:"vIS"`
	} `json:"gIS"`
}

func newLegacyTotal(base, ibs, cbs, selective decimal.Decimal) LegacyTotal {
	var t LegacyTotal
	tot := &t.TribCalc.IBSCBSTot
	tot.Base = base.StringFixed(2)
	tot.IBS.Amount = ibs.StringFixed(2)
	tot.CBS.Amount = cbs.StringFixed(2)
	tot.IS.Amount = selective.StringFixed(2)
	return t
}

// NewLiveResult embrulha um cálculo ao vivo (possivelmente juntado por item).
func NewLiveResult(res *domain.CalculationResult) LiveResult {
	if res == nil {
		res = &domain.CalculationResult{}
	}
	var base, ibs, cbs, selective decimal.Decimal
	for _, l := range res.Lines {
		base = base.Add(l.TaxBase)
		ibs = ibs.Add(l.IBSAmount)
		cbs = cbs.Add(l.CBSAmount)
		selective = selective.Add(l.SelectiveTaxAmount)
	}

	objects := res.Objects
	if objects == nil {
		objects = []json.RawMessage{}
	}
	return LiveResult{Objects: objects, Total: newLegacyTotal(base, ibs, cbs, selective)}
}

type yearObject struct {
	LineID   int `json:"nObj"`
	TribCalc struct {
		IBSCBS struct {
			Group struct {
				Base string `json:"vBC"`
				IBS  string `json:"vIBS"`
				CBS  struct {
					Amount string `json:"vCBS"`
					Rate   string `json:"pCBS"`
				} `json:"gCBS"`
			} `json:"gIBSCBS"`
		} `json:"IBSCBS"`
		IS struct {
			Amount string `json:"vIS"`
		} `json:"IS"`
	} `json:"tribCalc"`
}

// LiveResultFromYear remonta o "resultado2026" a partir de um ano calculado,
// na projeção por ano, onde não há chamada ao vivo separada.
func LiveResultFromYear(year *domain.YearResult) LiveResult {
	if year == nil {
		zero := decimal.Zero
		return LiveResult{Objects: []json.RawMessage{}, Total: newLegacyTotal(zero, zero, zero, zero)}
	}

	objects := make([]json.RawMessage, 0, len(year.Lines))
	var base decimal.Decimal
	for _, l := range year.Lines {
		base = base.Add(l.TaxBase)

		var o yearObject
		o.LineID = l.Number
		g := &o.TribCalc.IBSCBS.Group
		g.Base = l.TaxBase.StringFixed(2)
		g.IBS = l.IBS.StringFixed(2)
		g.CBS.Amount = l.CBS.StringFixed(2)
		g.CBS.Rate = l.CBSRate.String()
		o.TribCalc.IS.Amount = l.SelectiveTax.StringFixed(2)

		raw, err := json.Marshal(o)
		if err != nil {
			continue
		}
		objects = append(objects, raw)
	}

	return LiveResult{
		Objects: objects,
		Total:   newLegacyTotal(base, year.Totals.IBS, year.Totals.CBS, year.Totals.SelectiveTax),
	}
}
