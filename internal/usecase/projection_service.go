package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/Victor-armando18/service-tax-transition/internal/domain/transition"
	"github.com/Victor-armando18/service-tax-transition/internal/interfaces"
	"go.uber.org/zap"
)

// A calculadora usa a data de emissão para escolher a tabela de alíquotas.
var brazilTime = time.FixedZone("BRT", -3*60*60)

type ProjectionService struct {
	engine       *transition.Engine
	calculator   interfaces.TaxCalculator
	loader       interfaces.RulePackLoader
	executor     interfaces.RuleExecutor
	rulesVersion string
	now          func() time.Time
	logger       *zap.Logger
}

type Params struct {
	Engine       *transition.Engine
	Calculator   interfaces.TaxCalculator
	RuleLoader   interfaces.RulePackLoader // nil desliga os guards
	RuleExecutor interfaces.RuleExecutor
	RulesVersion string
	Now          func() time.Time
	Logger       *zap.Logger
}

func NewProjectionService(p Params) interfaces.ProjectionFacade {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectionService{
		engine:       p.Engine,
		calculator:   p.Calculator,
		loader:       p.RuleLoader,
		executor:     p.RuleExecutor,
		rulesVersion: p.RulesVersion,
		now:          now,
		logger:       logger,
	}
}

func (s *ProjectionService) Project(ctx context.Context, invoice domain.Invoice) (*domain.ProjectionResult, error) {
	log := s.logger.With(zap.String("invoice", invoice.ID), zap.String("method", string(domain.MethodLive)))

	hits, err := s.runGuards(ctx, invoice)
	if err != nil {
		return nil, err
	}
	if len(hits) > 0 {
		log.Info("invoice blocked by guards", zap.Int("violations", len(hits)))
		return &domain.ProjectionResult{Method: domain.MethodLive, GuardsHit: hits}, nil
	}

	log.Debug("projection started", zap.Int("lines", len(invoice.Lines)))
	live, err := s.calculateLive(ctx, invoice)
	if err != nil {
		return nil, err
	}

	years := s.engine.Project(live.Lines, invoice.Lines, invoice.LegacyTaxes)
	log.Info("projection finished", zap.Int("years", len(years)))

	return &domain.ProjectionResult{
		Method: domain.MethodLive,
		Live:   live,
		Years:  years,
	}, nil
}

// calculateLive chama a calculadora uma vez por item: o endpoint rejeita
// "numero" duplicado dentro da mesma requisição.
func (s *ProjectionService) calculateLive(ctx context.Context, invoice domain.Invoice) (*domain.CalculationResult, error) {
	base := invoice
	base.IssuedAt = issuedAt(s.now())

	merged := &domain.CalculationResult{}
	for _, line := range invoice.Lines {
		single := base
		single.Lines = []domain.InvoiceLine{line}

		res, err := s.calculator.Calculate(ctx, single)
		if err != nil {
			return nil, fmt.Errorf("calcular item %d: %w", line.Number, err)
		}
		merged.Objects = append(merged.Objects, res.Objects...)
		merged.Lines = append(merged.Lines, res.Lines...)
	}
	return merged, nil
}

func (s *ProjectionService) ProjectPerYear(ctx context.Context, invoice domain.Invoice) (*domain.ProjectionResult, error) {
	log := s.logger.With(zap.String("invoice", invoice.ID), zap.String("method", string(domain.MethodPerYearRTC)))

	hits, err := s.runGuards(ctx, invoice)
	if err != nil {
		return nil, err
	}
	if len(hits) > 0 {
		log.Info("invoice blocked by guards", zap.Int("violations", len(hits)))
		return &domain.ProjectionResult{Method: domain.MethodPerYearRTC, GuardsHit: hits}, nil
	}

	log.Debug("projection started", zap.Int("lines", len(invoice.Lines)))
	projection := s.engine.ProjectPerYear(ctx, invoice.Lines, invoice.LegacyTaxes,
		func(ctx context.Context, entry domain.YearScheduleEntry, lines []domain.InvoiceLine) ([]domain.ExternalLineResult, error) {
			payload := invoice
			payload.IssuedAt = yearStart(entry.Year)
			payload.Lines = lines

			res, err := s.calculator.Calculate(ctx, payload)
			if err != nil {
				return nil, err
			}
			return res.Lines, nil
		})

	for _, o := range projection.Outcomes {
		if o.Skipped() {
			log.Warn("year skipped: calculator call failed", zap.Int("year", o.Year), zap.Error(o.Err))
		}
	}

	result := &domain.ProjectionResult{
		Method:       domain.MethodPerYearRTC,
		Years:        projection.Years(),
		SkippedYears: projection.SkippedYears(),
	}
	log.Info("projection finished", zap.Int("years", len(result.Years)), zap.Ints("skipped", result.SkippedYears))
	return result, nil
}

// runGuards avalia cada regra da fase "guards" contra cada item da nota.
// Uma regra que retorna true é uma violação.
func (s *ProjectionService) runGuards(ctx context.Context, invoice domain.Invoice) ([]domain.GuardViolation, error) {
	if s.loader == nil || s.executor == nil {
		return nil, nil
	}

	pack, err := s.loader.Load(ctx, s.rulesVersion)
	if err != nil {
		return nil, err
	}

	header := invoice
	header.Lines = nil
	header.LegacyTaxes = nil

	var hits []domain.GuardViolation
	for _, rule := range pack.Rules {
		if rule.Phase != domain.PhaseGuards {
			continue
		}
		for _, line := range invoice.Lines {
			out, err := s.executor.Execute(ctx, rule.Logic, map[string]interface{}{"invoice": header, "line": line})
			if err != nil {
				s.logger.Warn("guard rule failed", zap.String("rule", rule.ID), zap.Error(err))
				continue
			}
			if v, ok := out.(bool); !ok || !v {
				continue
			}

			msg := rule.ErrorMessage
			if msg == "" {
				msg = "Condição restritiva atingida"
			}
			hits = append(hits, domain.GuardViolation{
				RuleID:     rule.ID,
				LineNumber: line.Number,
				Reason:     "Violation Detected",
				Context:    msg,
			})
		}
	}
	return hits, nil
}

func issuedAt(t time.Time) string {
	return t.In(brazilTime).Format("2006-01-02T15:04:05-07:00")
}

func yearStart(year int) string {
	return fmt.Sprintf("%d-01-01T12:00:00-03:00", year)
}
