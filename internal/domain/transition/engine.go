package transition

import (
	"context"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Engine projeta uma nota sobre o cronograma de transição. Só guarda
// configuração imutável, então pode ser usado em paralelo.
type Engine struct {
	config     *domain.Config
	classifier *Classifier
}

func NewEngine(cfg *domain.Config) *Engine {
	return &Engine{
		config:     cfg,
		classifier: NewClassifier(cfg.Categories()),
	}
}

// Project monta todos os anos a partir de um único cálculo ao vivo: o ano
// autoritativo reaproveita a resposta da calculadora, os demais são simulados.
func (e *Engine) Project(live []domain.ExternalLineResult, lines []domain.InvoiceLine, baseline *domain.LegacyTaxBaseline) []domain.YearResult {
	idx := IndexLines(lines)
	years := e.config.Years()

	out := make([]domain.YearResult, 0, len(years))
	for _, entry := range years {
		var items []domain.LineResult
		if entry.Source == domain.SourceAuthoritative {
			items = e.ExtractLive(live, idx)
		} else {
			items = make([]domain.LineResult, 0, len(lines))
			for _, l := range lines {
				items = append(items, e.ProjectLine(entry, l))
			}
		}
		out = append(out, buildYear(entry, items, LegacyResiduals(baseline, entry), entry.Source))
	}
	return out
}

// YearFetcher faz o cálculo autoritativo de um ano do cronograma.
// lines já vem renumerado 1..N e pertence à chamada.
type YearFetcher func(ctx context.Context, entry domain.YearScheduleEntry, lines []domain.InvoiceLine) ([]domain.ExternalLineResult, error)

// ProjectPerYear chama fetch para cada ano em paralelo e espera todos.
// Ano com falha vira resultado ignorado; nada é cancelado e a ordem do
// cronograma é mantida.
func (e *Engine) ProjectPerYear(ctx context.Context, lines []domain.InvoiceLine, baseline *domain.LegacyTaxBaseline, fetch YearFetcher) domain.Projection {
	renumbered, idx := Renumber(lines)
	years := e.config.Years()
	outcomes := make([]domain.YearOutcome, len(years))

	var g errgroup.Group
	for i, entry := range years {
		i, entry := i, entry
		g.Go(func() error {
			results, err := fetch(ctx, entry, append([]domain.InvoiceLine(nil), renumbered...))
			if err != nil {
				outcomes[i] = domain.YearOutcome{Year: entry.Year, Err: err}
				return nil
			}

			items := e.ExtractAuthoritative(results, idx)
			year := buildYear(entry, items, LegacyResiduals(baseline, entry), domain.SourcePerYearRTC)
			rates := EffectiveRates(items, year.Totals)
			year.Effective = &rates
			outcomes[i] = domain.YearOutcome{Year: entry.Year, Result: &year}
			return nil
		})
	}
	_ = g.Wait()

	return domain.Projection{Outcomes: outcomes}
}

func buildYear(entry domain.YearScheduleEntry, items []domain.LineResult, legacy LegacyResidual, source domain.Source) domain.YearResult {
	return domain.YearResult{
		Year:                entry.Year,
		Phase:               entry.Phase,
		Description:         entry.Description,
		NominalCBSRate:      percent(entry.CBSRate),
		NominalIBSRate:      percent(entry.IBSRate),
		SelectiveTaxApplies: entry.SelectiveTaxApplies,
		Source:              source,
		Lines:               items,
		Totals:              Aggregate(items, legacy),
	}
}
