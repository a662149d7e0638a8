// Package projection expõe a projeção da transição para uso embarcado e
// offline: com a nota e uma resposta da calculadora que o chamador já tem,
// monta a tabela 2026-2033 sem nenhuma chamada de rede.
package projection

import (
	"fmt"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/Victor-armando18/service-tax-transition/internal/domain/transition"
	"github.com/Victor-armando18/service-tax-transition/internal/infrastructure/calculator"
	"github.com/Victor-armando18/service-tax-transition/internal/infrastructure/yaml"
)

type (
	Invoice           = domain.Invoice
	InvoiceLine       = domain.InvoiceLine
	LegacyTaxBaseline = domain.LegacyTaxBaseline
	YearResult        = domain.YearResult
	YearTotals        = domain.YearTotals
	LineResult        = domain.LineResult
)

type Projector struct {
	engine *transition.Engine
}

// New usa o cronograma embutido no módulo.
func New() (*Projector, error) {
	cfg, err := yaml.LoadDefault()
	if err != nil {
		return nil, err
	}
	return &Projector{engine: transition.NewEngine(cfg)}, nil
}

// NewFromFile usa um cronograma YAML em disco.
func NewFromFile(path string) (*Projector, error) {
	cfg, err := yaml.LoadSchedule(path)
	if err != nil {
		return nil, err
	}
	return &Projector{engine: transition.NewEngine(cfg)}, nil
}

// Project monta os oito anos. live é o JSON bruto do regime-geral do ano
// corrente; nil deixa o ano autoritativo sem itens.
func (p *Projector) Project(invoice Invoice, live []byte) ([]YearResult, error) {
	var lines []domain.ExternalLineResult
	if len(live) > 0 {
		res, err := calculator.DecodeResult(live)
		if err != nil {
			return nil, fmt.Errorf("resultado da calculadora: %w", err)
		}
		lines = res.Lines
	}
	return p.engine.Project(lines, invoice.Lines, invoice.LegacyTaxes), nil
}
