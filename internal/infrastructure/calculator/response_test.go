package calculator_test

import (
	"testing"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/Victor-armando18/service-tax-transition/internal/infrastructure/calculator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResult(t *testing.T) {
	t.Run("campos ausentes viram zero e nObj padrão é 1", func(t *testing.T) {
		res, err := calculator.DecodeResult([]byte(`{"objetos":[{"tribCalc":{"IS":{"vIS":"12.345"}}}]}`))
		require.NoError(t, err)
		require.Len(t, res.Lines, 1)

		line := res.Lines[0]
		assert.Equal(t, 1, line.LineID)
		assert.True(t, line.TaxBase.IsZero())
		assert.True(t, line.CBSAmount.IsZero())
		assert.True(t, line.IBSRate().IsZero())
		assert.True(t, line.SelectiveTaxAmount.Equal(decimal.RequireFromString("12.345")))
	})

	t.Run("sem objetos", func(t *testing.T) {
		res, err := calculator.DecodeResult([]byte(`{}`))
		require.NoError(t, err)
		assert.Empty(t, res.Lines)
	})

	t.Run("valor não numérico vira zero", func(t *testing.T) {
		res, err := calculator.DecodeResult([]byte(`{"objetos":[{"nObj":3,"tribCalc":{"IBSCBS":{"gIBSCBS":{"vBC":"abc"}}}}]}`))
		require.NoError(t, err)
		assert.Equal(t, 3, res.Lines[0].LineID)
		assert.True(t, res.Lines[0].TaxBase.IsZero())
	})

	t.Run("corpo inválido", func(t *testing.T) {
		_, err := calculator.DecodeResult([]byte(`<html>erro</html>`))
		assert.ErrorIs(t, err, domain.ErrCalculatorRejected)
	})
}
