package transition_test

import (
	"testing"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/Victor-armando18/service-tax-transition/internal/domain/transition"
	"github.com/Victor-armando18/service-tax-transition/internal/infrastructure/yaml"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) (*transition.Engine, *domain.Config) {
	t.Helper()
	cfg, err := yaml.LoadDefault()
	require.NoError(t, err)
	return transition.NewEngine(cfg), cfg
}

func scheduleYear(t *testing.T, cfg *domain.Config, year int) domain.YearScheduleEntry {
	t.Helper()
	entry, ok := cfg.Year(year)
	require.True(t, ok, "year %d missing from schedule", year)
	return entry
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s %v", want, got, msgAndArgs)
}
