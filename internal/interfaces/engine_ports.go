package interfaces

import (
	"context"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
)

// ConfigLoader carrega o cronograma de transição e as categorias do IS, uma vez no startup.
type ConfigLoader interface {
	Load(ctx context.Context) (*domain.Config, error)
}

// RulePackLoader define o contrato para carregar os RulePacks de guards (de disco, rede, etc.).
type RulePackLoader interface {
	Load(ctx context.Context, version string) (*domain.RulePackDefinition, error)
}

// RuleExecutor executa uma regra JsonLogic contra as variáveis de contexto.
type RuleExecutor interface {
	Execute(ctx context.Context, ruleData map[string]interface{}, contextVars map[string]interface{}) (interface{}, error)
}

// TaxCalculator é a calculadora RTC oficial (ou a instância local de fallback).
type TaxCalculator interface {
	Calculate(ctx context.Context, invoice domain.Invoice) (*domain.CalculationResult, error)
}

// ProjectionFacade é a porta de entrada da aplicação.
type ProjectionFacade interface {
	// Project faz a chamada autoritativa do ano corrente e simula os demais anos.
	Project(ctx context.Context, invoice domain.Invoice) (*domain.ProjectionResult, error)
	// ProjectPerYear faz uma chamada autoritativa por ano, em paralelo.
	ProjectPerYear(ctx context.Context, invoice domain.Invoice) (*domain.ProjectionResult, error)
}
