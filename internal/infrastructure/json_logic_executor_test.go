package infrastructure

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineVars(t *testing.T, line domain.InvoiceLine) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{"line": line})
	require.NoError(t, err)
	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &vars))
	return vars
}

func TestJsonLogicExecutor_Execute(t *testing.T) {
	exec := NewJsonLogicExecutor()
	ctx := context.Background()

	t.Run("resultado numérico vira float64", func(t *testing.T) {
		rule := map[string]interface{}{"*": []interface{}{map[string]interface{}{"var": "base"}, 0.088}}
		res, err := exec.Execute(ctx, rule, map[string]interface{}{"base": 1000})
		require.NoError(t, err)
		assert.InDelta(t, 88.0, res, 1e-9)
	})

	t.Run("var inexistente é nil", func(t *testing.T) {
		rule := map[string]interface{}{"var": "nada"}
		res, err := exec.Execute(ctx, rule, map[string]interface{}{})
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("dados não serializáveis", func(t *testing.T) {
		rule := map[string]interface{}{"var": "x"}
		_, err := exec.Execute(ctx, rule, map[string]interface{}{"x": make(chan int)})
		assert.ErrorIs(t, err, domain.ErrRuleExecutionFailed)
	})
}

func TestInvoiceGuards(t *testing.T) {
	pack, err := NewFileRuleLoader("../../pkg/rules").Load(context.Background(), "v1")
	require.NoError(t, err)
	require.NotEmpty(t, pack.Rules)

	exec := NewJsonLogicExecutor()
	valid := domain.InvoiceLine{Number: 1, CommodityCode: "2401", TaxBase: decimal.NewFromInt(100), CST: "000", ClassCode: "000001"}

	hits := func(line domain.InvoiceLine) []string {
		var ids []string
		for _, r := range pack.Rules {
			res, err := exec.Execute(context.Background(), r.Logic, lineVars(t, line))
			require.NoError(t, err, r.ID)
			if res == true {
				ids = append(ids, r.ID)
			}
		}
		return ids
	}

	assert.Empty(t, hits(valid))

	bad := valid
	bad.Number = 0
	bad.TaxBase = decimal.NewFromInt(-1)
	bad.CST = ""
	bad.ClassCode = ""
	assert.ElementsMatch(t, []string{
		"item-numero-positivo",
		"item-base-nao-negativa",
		"item-cst-obrigatorio",
		"item-cclasstrib-obrigatorio",
	}, hits(bad))
}
