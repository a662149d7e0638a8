package domain

// YearOutcome separa o ano calculado do ano ignorado porque a chamada
// autoritativa falhou.
type YearOutcome struct {
	Year   int
	Result *YearResult
	Err    error
}

func (o YearOutcome) Skipped() bool { return o.Result == nil }

// Projection é o conjunto de resultados na ordem do cronograma.
type Projection struct {
	Outcomes []YearOutcome
}

// Years devolve só os anos calculados, na ordem do cronograma.
func (p Projection) Years() []YearResult {
	out := make([]YearResult, 0, len(p.Outcomes))
	for _, o := range p.Outcomes {
		if !o.Skipped() {
			out = append(out, *o.Result)
		}
	}
	return out
}

func (p Projection) SkippedYears() []int {
	var out []int
	for _, o := range p.Outcomes {
		if o.Skipped() {
			out = append(out, o.Year)
		}
	}
	return out
}

// Method identifica qual orquestração gerou o ProjectionResult.
type Method string

const (
	MethodLive       Method = "local"
	MethodPerYearRTC Method = "rtc"
)

// ProjectionResult é o que o usecase entrega para a camada HTTP.
type ProjectionResult struct {
	Method       Method
	Live         *CalculationResult
	Years        []YearResult
	SkippedYears []int
	GuardsHit    []GuardViolation
}
