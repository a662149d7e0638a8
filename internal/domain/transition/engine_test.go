package transition_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/Victor-armando18/service-tax-transition/internal/domain/transition"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLines() []domain.InvoiceLine {
	return []domain.InvoiceLine{
		{Number: 10, CommodityCode: "2203.00.00", Description: "Cerveja", TaxBase: dec("1000.00")},
		{Number: 20, CommodityCode: "8471.30.12", TaxBase: dec("500.00")},
	}
}

func TestEngine_Project(t *testing.T) {
	engine, _ := newEngine(t)
	lines := sampleLines()
	live := []domain.ExternalLineResult{
		{LineID: 10, TaxBase: dec("1000"), CBSAmount: dec("9"), CBSRate: dec("0.9"), IBSAmount: dec("1"), IBSStateRate: dec("0.05"), IBSMunicipalRate: dec("0.05")},
		{LineID: 20, TaxBase: dec("500"), CBSAmount: dec("4.5"), CBSRate: dec("0.9"), IBSAmount: dec("0.5"), IBSStateRate: dec("0.1")},
	}
	baseline := &domain.LegacyTaxBaseline{ICMS: dec("180"), PIS: dec("24.75"), COFINS: dec("114")}

	years := engine.Project(live, lines, baseline)
	require.Len(t, years, domain.TransitionYears)

	for i, y := range years {
		assert.Equal(t, domain.FirstTransitionYear+i, y.Year)
		assert.Nil(t, y.Effective, "year %d", y.Year)
		assert.Len(t, y.Lines, 2, "year %d", y.Year)
	}

	t.Run("2026 vem da calculadora", func(t *testing.T) {
		y := years[0]
		assert.Equal(t, domain.SourceAuthoritative, y.Source)
		assert.False(t, y.SelectiveTaxApplies)
		assert.Equal(t, "Cerveja", y.Lines[0].Description)
		assert.Equal(t, "Item 20", y.Lines[1].Description)
		assert.Nil(t, y.Lines[0].SelectiveTaxInfo)
		assertAmount(t, "0.1", y.Lines[0].IBSRate)
		assertAmount(t, "13.50", y.Totals.CBS)
		assertAmount(t, "1.50", y.Totals.IBS)
		assertAmount(t, "15.00", y.Totals.VAT)
		assertAmount(t, "318.75", y.Totals.Legacy)
		assertAmount(t, "333.75", y.Totals.Grand)
		assertAmount(t, "0.9", y.NominalCBSRate)
	})

	t.Run("2027 em diante é simulado", func(t *testing.T) {
		y := years[1]
		assert.Equal(t, domain.SourceModeled, y.Source)
		// cerveja: IS 20% de 1000
		assertAmount(t, "200.00", y.Lines[0].SelectiveTax)
		require.NotNil(t, y.Lines[0].SelectiveTaxInfo)
		assert.Equal(t, "Bebidas alcoólicas", y.Lines[0].SelectiveTaxInfo.Description)
		assert.True(t, y.Lines[1].SelectiveTax.IsZero())
		assertAmount(t, "132.00", y.Totals.CBS)
		assertAmount(t, "180.00", y.Totals.ICMS)
		assertAmount(t, "0.00", y.Totals.PISCOFINS)
	})

	t.Run("2033 extingue tributos legados", func(t *testing.T) {
		y := years[len(years)-1]
		assertAmount(t, "0", y.Totals.Legacy)
		assert.True(t, y.Totals.Grand.Equal(y.Totals.VAT))
	})

	t.Run("identidades dos totais", func(t *testing.T) {
		for _, y := range years {
			assertTotalsConsistent(t, y)
		}
	})
}

func TestEngine_Project_WithoutLines(t *testing.T) {
	engine, _ := newEngine(t)

	years := engine.Project(nil, nil, nil)
	require.Len(t, years, domain.TransitionYears)
	for _, y := range years {
		assert.Empty(t, y.Lines)
		assertAmount(t, "0", y.Totals.Grand, y.Year)
	}
}

func TestEngine_ProjectPerYear(t *testing.T) {
	engine, _ := newEngine(t)
	failing := map[int]bool{2028: true, 2031: true}

	var (
		mu       sync.Mutex
		arrived  int
		allHere  = make(chan struct{})
		received = map[int][]domain.InvoiceLine{}
	)
	fetch := func(ctx context.Context, entry domain.YearScheduleEntry, lines []domain.InvoiceLine) ([]domain.ExternalLineResult, error) {
		mu.Lock()
		arrived++
		received[entry.Year] = lines
		if arrived == domain.TransitionYears {
			close(allHere)
		}
		mu.Unlock()

		// todas as chamadas precisam estar em voo ao mesmo tempo
		select {
		case <-allHere:
		case <-time.After(2 * time.Second):
			return nil, errors.New("chamadas não concorrentes")
		}

		if failing[entry.Year] {
			return nil, domain.ErrCalculatorUnavailable
		}
		out := make([]domain.ExternalLineResult, 0, len(lines))
		for _, l := range lines {
			r := domain.ExternalLineResult{
				LineID:    l.Number,
				TaxBase:   l.TaxBase,
				CBSAmount: l.TaxBase.Mul(entry.CBSRate),
				CBSRate:   entry.CBSRate.Mul(decimal.NewFromInt(100)),
				IBSAmount: l.TaxBase.Mul(dec("0.001")),
			}
			if entry.SelectiveTaxApplies && transition.CommodityPrefix(l.CommodityCode) == "2203" {
				r.SelectiveTaxAmount = l.TaxBase.Mul(dec("0.2"))
			}
			out = append(out, r)
		}
		return out, nil
	}

	lines := sampleLines()
	proj := engine.ProjectPerYear(context.Background(), lines, nil, fetch)

	require.Len(t, proj.Outcomes, domain.TransitionYears)
	assert.Equal(t, []int{2028, 2031}, proj.SkippedYears())

	years := proj.Years()
	require.Len(t, years, 6)
	assert.Equal(t, []int{2026, 2027, 2029, 2030, 2032, 2033}, yearNumbers(years))

	t.Run("linhas renumeradas por chamada", func(t *testing.T) {
		for year, got := range received {
			require.Len(t, got, 2, "year %d", year)
			assert.Equal(t, 1, got[0].Number)
			assert.Equal(t, 2, got[1].Number)
		}
		// a entrada do chamador não é alterada
		assert.Equal(t, 10, lines[0].Number)
		assert.Equal(t, 20, lines[1].Number)
	})

	t.Run("taxas efetivas e origem", func(t *testing.T) {
		y := years[1] // 2027
		assert.Equal(t, domain.SourcePerYearRTC, y.Source)
		require.NotNil(t, y.Effective)
		assertAmount(t, "132.00", y.Totals.CBS)
		assertAmount(t, "1.50", y.Totals.IBS)
		assertAmount(t, "8.8", y.Effective.CBS)
		assertAmount(t, "0.1", y.Effective.IBS)
	})

	t.Run("IS identificado só quando cobrado", func(t *testing.T) {
		first := years[0] // 2026, sem IS
		assert.Nil(t, first.Lines[0].SelectiveTaxInfo)

		y := years[1]
		assertAmount(t, "200.00", y.Lines[0].SelectiveTax)
		require.NotNil(t, y.Lines[0].SelectiveTaxInfo)
		assert.Equal(t, "Bebidas alcoólicas", y.Lines[0].SelectiveTaxInfo.Description)
		assert.Nil(t, y.Lines[1].SelectiveTaxInfo)
		assert.Equal(t, "Cerveja", y.Lines[0].Description)
		assert.Equal(t, "Item 2", y.Lines[1].Description)
	})

	t.Run("erros preservados nos anos ignorados", func(t *testing.T) {
		for _, o := range proj.Outcomes {
			if o.Skipped() {
				assert.ErrorIs(t, o.Err, domain.ErrCalculatorUnavailable)
			}
		}
	})

	for _, y := range years {
		assertTotalsConsistent(t, y)
	}
}

func TestEngine_ProjectPerYear_AllFailing(t *testing.T) {
	engine, _ := newEngine(t)
	fetch := func(context.Context, domain.YearScheduleEntry, []domain.InvoiceLine) ([]domain.ExternalLineResult, error) {
		return nil, errors.New("boom")
	}

	proj := engine.ProjectPerYear(context.Background(), sampleLines(), nil, fetch)
	assert.Empty(t, proj.Years())
	assert.Len(t, proj.SkippedYears(), domain.TransitionYears)
}

func TestEffectiveRates(t *testing.T) {
	t.Run("base zero", func(t *testing.T) {
		got := transition.EffectiveRates(nil, domain.YearTotals{})
		assert.True(t, got.CBS.IsZero())
		assert.True(t, got.IBS.IsZero())
	})

	t.Run("três casas", func(t *testing.T) {
		lines := []domain.LineResult{{TaxBase: dec("300")}}
		got := transition.EffectiveRates(lines, domain.YearTotals{CBS: dec("26.41"), IBS: dec("1")})
		assertAmount(t, "8.803", got.CBS)
		assertAmount(t, "0.333", got.IBS)
	})
}

func TestAggregate(t *testing.T) {
	lines := []domain.LineResult{
		{CBS: dec("0.01"), IBS: dec("0.02"), SelectiveTax: dec("1.00")},
		{CBS: dec("10.10"), IBS: dec("0.33")},
	}
	legacy := transition.LegacyResidual{ICMS: dec("5.00"), IPI: dec("1.25"), Total: dec("6.25")}

	got := transition.Aggregate(lines, legacy)
	assertAmount(t, "10.11", got.CBS)
	assertAmount(t, "0.35", got.IBS)
	assertAmount(t, "1.00", got.SelectiveTax)
	assertAmount(t, "11.46", got.VAT)
	assertAmount(t, "17.71", got.Grand)
	assertAmount(t, "1.25", got.IPI)

	empty := transition.Aggregate(nil, transition.LegacyResidual{})
	assert.True(t, empty.Grand.IsZero())
}

func assertTotalsConsistent(t *testing.T, y domain.YearResult) {
	t.Helper()
	var cbs, ibs, is decimal.Decimal
	for _, l := range y.Lines {
		cbs = cbs.Add(l.CBS)
		ibs = ibs.Add(l.IBS)
		is = is.Add(l.SelectiveTax)
	}
	tot := y.Totals
	assert.True(t, tot.CBS.Equal(cbs.Round(2)), "year %d cbs", y.Year)
	assert.True(t, tot.IBS.Equal(ibs.Round(2)), "year %d ibs", y.Year)
	assert.True(t, tot.SelectiveTax.Equal(is.Round(2)), "year %d is", y.Year)
	assert.True(t, tot.VAT.Equal(tot.CBS.Add(tot.IBS).Add(tot.SelectiveTax)), "year %d iva", y.Year)
	assert.True(t, tot.Legacy.Equal(tot.ICMS.Add(tot.PISCOFINS).Add(tot.IPI)), "year %d legado", y.Year)
	assert.True(t, tot.Grand.Equal(tot.VAT.Add(tot.Legacy)), "year %d geral", y.Year)
}

func yearNumbers(years []domain.YearResult) []int {
	out := make([]int, 0, len(years))
	for _, y := range years {
		out = append(out, y.Year)
	}
	return out
}
