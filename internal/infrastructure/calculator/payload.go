package calculator

import (
	"encoding/json"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/shopspring/decimal"
)

const defaultVersion = "1.0.0"

// requestPayload é o que o regime-geral aceita: sem descricao, nbs nem
// tributosAtuais.
type requestPayload struct {
	ID           string        `json:"id"`
	Version      string        `json:"versao"`
	IssuedAt     string        `json:"dataHoraEmissao"`
	Municipality int           `json:"municipio"`
	State        string        `json:"uf"`
	Items        []requestItem `json:"itens"`
}

type requestItem struct {
	Number          int             `json:"numero"`
	CommodityCode   string          `json:"ncm"`
	Quantity        decimal.Decimal `json:"quantidade"`
	Unit            string          `json:"unidade"`
	CST             string          `json:"cst"`
	TaxBase         decimal.Decimal `json:"baseCalculo"`
	ClassCode       string          `json:"cClassTrib"`
	RegularTaxation json.RawMessage `json:"tributacaoRegular,omitempty"`
	SelectiveTax    json.RawMessage `json:"impostoSeletivo,omitempty"`
}

func buildPayload(inv domain.Invoice) requestPayload {
	version := inv.Version
	if version == "" {
		version = defaultVersion
	}

	items := make([]requestItem, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		items = append(items, requestItem{
			Number:          l.Number,
			CommodityCode:   l.CommodityCode,
			Quantity:        l.Quantity,
			Unit:            l.Unit,
			CST:             l.CST,
			TaxBase:         l.TaxBase,
			ClassCode:       l.ClassCode,
			RegularTaxation: l.RegularTaxation,
			SelectiveTax:    l.SelectiveTax,
		})
	}

	return requestPayload{
		ID:           inv.ID,
		Version:      version,
		IssuedAt:     inv.IssuedAt,
		Municipality: inv.Municipality,
		State:        inv.State,
		Items:        items,
	}
}
