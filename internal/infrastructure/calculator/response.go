package calculator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	pathBase         = "tribCalc.IBSCBS.gIBSCBS.vBC"
	pathIBS          = "tribCalc.IBSCBS.gIBSCBS.vIBS"
	pathCBS          = "tribCalc.IBSCBS.gIBSCBS.gCBS.vCBS"
	pathCBSRate      = "tribCalc.IBSCBS.gIBSCBS.gCBS.pCBS"
	pathIBSStateRate = "tribCalc.IBSCBS.gIBSCBS.gIBSUF.pIBSUF"
	pathIBSMunRate   = "tribCalc.IBSCBS.gIBSCBS.gIBSMun.pIBSMun"
	pathSelective    = "tribCalc.IS.vIS"
)

// DecodeResult lê "objetos" da resposta do regime-geral. Campo numérico
// ausente vale zero; nObj ausente vale 1.
func DecodeResult(body []byte) (*domain.CalculationResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: resposta não é JSON", domain.ErrCalculatorRejected)
	}

	res := &domain.CalculationResult{}
	gjson.GetBytes(body, "objetos").ForEach(func(_, obj gjson.Result) bool {
		res.Objects = append(res.Objects, json.RawMessage(obj.Raw))
		res.Lines = append(res.Lines, decodeLine(obj))
		return true
	})
	return res, nil
}

func decodeLine(obj gjson.Result) domain.ExternalLineResult {
	lineID := 1
	if n := obj.Get("nObj"); n.Exists() && n.Type != gjson.Null {
		lineID = int(n.Int())
	}
	return domain.ExternalLineResult{
		LineID:             lineID,
		TaxBase:            number(obj, pathBase),
		CBSAmount:          number(obj, pathCBS),
		CBSRate:            number(obj, pathCBSRate),
		IBSAmount:          number(obj, pathIBS),
		IBSStateRate:       number(obj, pathIBSStateRate),
		IBSMunicipalRate:   number(obj, pathIBSMunRate),
		SelectiveTaxAmount: number(obj, pathSelective),
	}
}

// number aceita tanto número quanto string numérica ("12.34").
func number(obj gjson.Result, path string) decimal.Decimal {
	v := obj.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v.String()))
	if err != nil {
		return decimal.Zero
	}
	return d
}
