package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

func init() {
	// Valores monetários saem como número JSON, como a calculadora e o front esperam.
	decimal.MarshalJSONWithoutQuotes = true
}

// --- Estruturas de Entrada ---

// Invoice é a nota fiscal recebida pela API. LegacyTaxes nunca é enviado à calculadora externa.
type Invoice struct {
	ID           string             `json:"id"`
	Version      string             `json:"versao"`
	IssuedAt     string             `json:"dataHoraEmissao"`
	Municipality int                `json:"municipio"`
	State        string             `json:"uf"`
	Lines        []InvoiceLine      `json:"itens"`
	LegacyTaxes  *LegacyTaxBaseline `json:"tributosAtuais,omitempty"`
}

type InvoiceLine struct {
	Number          int             `json:"numero"`
	CommodityCode   string          `json:"ncm"`
	ServiceCode     string          `json:"nbs,omitempty"`
	Description     string          `json:"descricao,omitempty"`
	TaxBase         decimal.Decimal `json:"baseCalculo"`
	Quantity        decimal.Decimal `json:"quantidade"`
	Unit            string          `json:"unidade"`
	CST             string          `json:"cst"`
	ClassCode       string          `json:"cClassTrib"`
	RegularTaxation json.RawMessage `json:"tributacaoRegular,omitempty"`
	SelectiveTax    json.RawMessage `json:"impostoSeletivo,omitempty"`
}

// LegacyTaxBaseline são os tributos extraídos do XML da NF-e, constantes em todos os anos.
type LegacyTaxBaseline struct {
	ICMS             decimal.Decimal `json:"vICMS"`
	ICMSSubstitution decimal.Decimal `json:"vST"`
	IPI              decimal.Decimal `json:"vIPI"`
	PIS              decimal.Decimal `json:"vPIS"`
	COFINS           decimal.Decimal `json:"vCOFINS"`
	ISS              decimal.Decimal `json:"vISS"`
}

// ExternalLineResult é um "objeto" devolvido pela calculadora, só com os campos
// que a projeção usa. Campo ausente vale zero.
type ExternalLineResult struct {
	LineID             int
	TaxBase            decimal.Decimal
	CBSAmount          decimal.Decimal
	CBSRate            decimal.Decimal
	IBSAmount          decimal.Decimal
	IBSStateRate       decimal.Decimal
	IBSMunicipalRate   decimal.Decimal
	SelectiveTaxAmount decimal.Decimal
}

// IBSRate é a alíquota de IBS estadual + municipal informada pela calculadora.
func (r ExternalLineResult) IBSRate() decimal.Decimal {
	return r.IBSStateRate.Add(r.IBSMunicipalRate)
}

// CalculationResult guarda os objetos brutos junto dos itens lidos, para o
// "resultado2026" voltar sem alteração.
type CalculationResult struct {
	Objects []json.RawMessage
	Lines   []ExternalLineResult
}

// --- Estruturas de Saída ---

type SelectiveTaxMatch struct {
	Rate        decimal.Decimal `json:"rate"`
	Description string          `json:"desc"`
}

type LineResult struct {
	Number           int                `json:"numero"`
	CommodityCode    string             `json:"ncm"`
	Description      string             `json:"descricao"`
	TaxBase          decimal.Decimal    `json:"baseCalculo"`
	CBS              decimal.Decimal    `json:"cbs"`
	IBS              decimal.Decimal    `json:"ibs"`
	SelectiveTax     decimal.Decimal    `json:"is"`
	SelectiveTaxInfo *SelectiveTaxMatch `json:"isInfo"`
	CBSRate          decimal.Decimal    `json:"aliqCbs"`
	IBSRate          decimal.Decimal    `json:"aliqIbs"`
	// Total soma apenas o IVA; os tributos legados entram no total do ano.
	Total decimal.Decimal `json:"total"`
}

type YearTotals struct {
	CBS          decimal.Decimal `json:"cbs"`
	IBS          decimal.Decimal `json:"ibs"`
	VAT          decimal.Decimal `json:"iva"`
	SelectiveTax decimal.Decimal `json:"is"`
	ICMS         decimal.Decimal `json:"icms"`
	PISCOFINS    decimal.Decimal `json:"pisCofins"`
	IPI          decimal.Decimal `json:"ipi"`
	Legacy       decimal.Decimal `json:"tributosAnteriores"`
	Grand        decimal.Decimal `json:"geral"`
}

// EffectiveRates são ponderadas por todos os itens (valor / base * 100). Só a
// projeção autoritativa por ano as preenche.
type EffectiveRates struct {
	CBS decimal.Decimal
	IBS decimal.Decimal
}

type YearResult struct {
	Year                int
	Phase               string
	Description         string
	NominalCBSRate      decimal.Decimal
	NominalIBSRate      decimal.Decimal
	Effective           *EffectiveRates
	SelectiveTaxApplies bool
	Source              Source
	Lines               []LineResult
	Totals              YearTotals
}

type yearResultJSON struct {
	Year                int             `json:"ano"`
	Phase               string          `json:"fase"`
	Description         string          `json:"descricao"`
	CBSRate             decimal.Decimal `json:"aliqCbs"`
	IBSRate             decimal.Decimal `json:"aliqIbs"`
	SelectiveTaxApplies bool            `json:"aplicaIS"`
	Source              Source          `json:"fonte"`
	Lines               []LineResult    `json:"itens"`
	Totals              YearTotals      `json:"total"`
}

// MarshalJSON mantém os campos "aliqCbs"/"aliqIbs": alíquotas efetivas quando
// existem, nominais do cronograma caso contrário.
func (y YearResult) MarshalJSON() ([]byte, error) {
	out := yearResultJSON{
		Year:                y.Year,
		Phase:               y.Phase,
		Description:         y.Description,
		CBSRate:             y.NominalCBSRate,
		IBSRate:             y.NominalIBSRate,
		SelectiveTaxApplies: y.SelectiveTaxApplies,
		Source:              y.Source,
		Lines:               y.Lines,
		Totals:              y.Totals,
	}
	if y.Effective != nil {
		out.CBSRate = y.Effective.CBS
		out.IBSRate = y.Effective.IBS
	}
	if out.Lines == nil {
		out.Lines = []LineResult{}
	}
	return json.Marshal(out)
}

// --- Regras de validação (guards) ---

// RulePackDefinition define a estrutura de um conjunto de regras carregado.
type RulePackDefinition struct {
	Version     string       `json:"version"`
	Rules       []RuleConfig `json:"rules"`
	Description string       `json:"description,omitempty"`
}

type RuleConfig struct {
	ID           string                 `json:"id"`
	Phase        string                 `json:"phase"` // "guards" é a única fase avaliada hoje
	Logic        map[string]interface{} `json:"logic"` // estrutura JsonLogic
	ErrorMessage string                 `json:"error_message,omitempty"`
}

const PhaseGuards = "guards"

type GuardViolation struct {
	RuleID     string `json:"ruleId"`
	LineNumber int    `json:"numero"`
	Reason     string `json:"reason"`
	Context    string `json:"context"`
}
