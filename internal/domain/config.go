package domain

import (
	"fmt"
	"unicode"

	"github.com/shopspring/decimal"
)

// Source indica de onde vêm os números do ano.
type Source string

const (
	SourceAuthoritative Source = "api"
	SourceModeled       Source = "simulado"
	SourcePerYearRTC    Source = "api-rtc"
)

const (
	FirstTransitionYear = 2026
	TransitionYears     = 8
)

// YearScheduleEntry é uma linha da tabela de transição 2026-2033 (LC 214/2025).
type YearScheduleEntry struct {
	Year                int
	Phase               string
	Description         string
	CBSRate             decimal.Decimal
	IBSRate             decimal.Decimal
	SelectiveTaxApplies bool
	ICMSFactor          decimal.Decimal
	PISCOFINSFactor     decimal.Decimal
	IPIFactor           decimal.Decimal
	Source              Source
}

// SelectiveTaxCategory é uma faixa do Imposto Seletivo, por prefixo de 4 dígitos do NCM.
type SelectiveTaxCategory struct {
	Prefixes    []string
	Rate        decimal.Decimal
	Description string
}

// Config é a configuração de transição do processo. NewConfig valida uma vez
// e nada a altera depois; os acessores devolvem cópias.
type Config struct {
	years      []YearScheduleEntry
	categories []SelectiveTaxCategory
}

func NewConfig(years []YearScheduleEntry, categories []SelectiveTaxCategory) (*Config, error) {
	if err := validateSchedule(years); err != nil {
		return nil, err
	}
	if err := validateCategories(categories); err != nil {
		return nil, err
	}

	cfg := &Config{
		years:      append([]YearScheduleEntry(nil), years...),
		categories: make([]SelectiveTaxCategory, len(categories)),
	}
	for i, c := range categories {
		c.Prefixes = append([]string(nil), c.Prefixes...)
		cfg.categories[i] = c
	}
	return cfg, nil
}

func (c *Config) Years() []YearScheduleEntry {
	return append([]YearScheduleEntry(nil), c.years...)
}

func (c *Config) Year(year int) (YearScheduleEntry, bool) {
	for _, y := range c.years {
		if y.Year == year {
			return y, true
		}
	}
	return YearScheduleEntry{}, false
}

func (c *Config) Categories() []SelectiveTaxCategory {
	out := make([]SelectiveTaxCategory, len(c.categories))
	for i, cat := range c.categories {
		cat.Prefixes = append([]string(nil), cat.Prefixes...)
		out[i] = cat
	}
	return out
}

func validateSchedule(years []YearScheduleEntry) error {
	if len(years) != TransitionYears {
		return fmt.Errorf("%w: expected %d years, got %d", ErrInvalidSchedule, TransitionYears, len(years))
	}

	one := decimal.NewFromInt(1)
	for i, y := range years {
		if y.Year != FirstTransitionYear+i {
			return fmt.Errorf("%w: entry %d has year %d, expected %d", ErrInvalidSchedule, i, y.Year, FirstTransitionYear+i)
		}
		if y.CBSRate.IsNegative() || y.IBSRate.IsNegative() {
			return fmt.Errorf("%w: %d has a negative rate", ErrInvalidSchedule, y.Year)
		}
		for name, f := range map[string]decimal.Decimal{"icms": y.ICMSFactor, "pisCofins": y.PISCOFINSFactor, "ipi": y.IPIFactor} {
			if f.IsNegative() || f.GreaterThan(one) {
				return fmt.Errorf("%w: %d %s factor %s outside [0,1]", ErrInvalidSchedule, y.Year, name, f)
			}
		}
		if y.SelectiveTaxApplies == (y.Year == FirstTransitionYear) {
			return fmt.Errorf("%w: selective tax must apply to every year except %d (year %d)", ErrInvalidSchedule, FirstTransitionYear, y.Year)
		}
		if y.Source != SourceAuthoritative && y.Source != SourceModeled {
			return fmt.Errorf("%w: %d has unknown source %q", ErrInvalidSchedule, y.Year, y.Source)
		}
		if i == 0 {
			continue
		}

		prev := years[i-1]
		switch {
		case y.ICMSFactor.GreaterThan(prev.ICMSFactor),
			y.PISCOFINSFactor.GreaterThan(prev.PISCOFINSFactor),
			y.IPIFactor.GreaterThan(prev.IPIFactor):
			return fmt.Errorf("%w: legacy factors increase from %d to %d", ErrInvalidSchedule, prev.Year, y.Year)
		case y.CBSRate.LessThan(prev.CBSRate), y.IBSRate.LessThan(prev.IBSRate):
			return fmt.Errorf("%w: rates decrease from %d to %d", ErrInvalidSchedule, prev.Year, y.Year)
		}
	}
	return nil
}

func validateCategories(categories []SelectiveTaxCategory) error {
	for i, c := range categories {
		if len(c.Prefixes) == 0 {
			return fmt.Errorf("%w: category %d (%s) has no prefixes", ErrInvalidCategory, i, c.Description)
		}
		if c.Rate.IsNegative() {
			return fmt.Errorf("%w: category %d (%s) has a negative rate", ErrInvalidCategory, i, c.Description)
		}
		for _, p := range c.Prefixes {
			if len(p) != 4 || !isAlphanumeric(p) {
				return fmt.Errorf("%w: category %d (%s) prefix %q is not 4 alphanumeric characters", ErrInvalidCategory, i, c.Description, p)
			}
		}
	}
	return nil
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
