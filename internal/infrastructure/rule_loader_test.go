package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRuleLoader_Load(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("pacote inexistente", func(t *testing.T) {
		_, err := NewFileRuleLoader(dir).Load(ctx, "v9")
		assert.ErrorIs(t, err, domain.ErrRulePackNotFound)
	})

	t.Run("versão herdada do nome do arquivo", func(t *testing.T) {
		body := `{"rules":[{"id":"r1","phase":"guards","logic":{"==":[1,1]}}]}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "v2_invoice_guards.json"), []byte(body), 0o600))

		pack, err := NewFileRuleLoader(dir).Load(ctx, "v2")
		require.NoError(t, err)
		assert.Equal(t, "v2", pack.Version)
		require.Len(t, pack.Rules, 1)
		assert.Equal(t, domain.PhaseGuards, pack.Rules[0].Phase)
	})

	t.Run("JSON inválido", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "v3_invoice_guards.json"), []byte("{"), 0o600))
		_, err := NewFileRuleLoader(dir).Load(ctx, "v3")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrRulePackNotFound)
	})
}
