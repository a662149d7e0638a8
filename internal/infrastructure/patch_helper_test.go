package infrastructure

import (
	"testing"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patchInvoice() domain.Invoice {
	return domain.Invoice{
		ID:    "nota-1",
		State: "SP",
		Lines: []domain.InvoiceLine{
			{Number: 1, CommodityCode: "2401", TaxBase: decimal.NewFromInt(1000), CST: "000", ClassCode: "000001"},
		},
	}
}

func TestApplyInvoicePatch(t *testing.T) {
	original := patchInvoice()

	t.Run("altera base e UF", func(t *testing.T) {
		patch := []byte(`[
			{"op":"replace","path":"/itens/0/baseCalculo","value":2500.5},
			{"op":"replace","path":"/uf","value":"RJ"}
		]`)
		updated, err := ApplyInvoicePatch(original, patch)
		require.NoError(t, err)

		assert.Equal(t, "RJ", updated.State)
		assert.True(t, updated.Lines[0].TaxBase.Equal(decimal.RequireFromString("2500.5")))
		// a original continua intacta
		assert.Equal(t, "SP", original.State)

		delta, err := InvoiceDelta(original, updated)
		require.NoError(t, err)
		assert.JSONEq(t, `{"uf":"RJ","itens":[{"numero":1,"ncm":"2401","baseCalculo":2500.5,"quantidade":0,"unidade":"","cst":"000","cClassTrib":"000001"}]}`, string(delta))
	})

	t.Run("patch mal formado", func(t *testing.T) {
		_, err := ApplyInvoicePatch(original, []byte(`{"op":"replace"}`))
		assert.ErrorIs(t, err, domain.ErrInvalidPatch)
	})

	t.Run("caminho inexistente", func(t *testing.T) {
		_, err := ApplyInvoicePatch(original, []byte(`[{"op":"replace","path":"/itens/5/ncm","value":"2203"}]`))
		assert.ErrorIs(t, err, domain.ErrInvalidPatch)
	})
}

func TestInvoiceDelta_Unchanged(t *testing.T) {
	delta, err := InvoiceDelta(patchInvoice(), patchInvoice())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(delta))
}
