package yaml

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/Victor-armando18/service-tax-transition/internal/interfaces"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed transition_schedule.yaml
var defaultSchedule []byte

type scheduleFile struct {
	Years        []yearDoc     `yaml:"years"`
	SelectiveTax []categoryDoc `yaml:"selective_tax"`
}

type yearDoc struct {
	Year          int     `yaml:"year"`
	Phase         string  `yaml:"phase"`
	Description   string  `yaml:"description"`
	CBS           float64 `yaml:"cbs"`
	IBS           float64 `yaml:"ibs"`
	SelectiveTax  bool    `yaml:"selective_tax"`
	LegacyFactors struct {
		ICMS      float64 `yaml:"icms"`
		PISCOFINS float64 `yaml:"pis_cofins"`
		IPI       float64 `yaml:"ipi"`
	} `yaml:"legacy_factors"`
	Source string `yaml:"source"`
}

type categoryDoc struct {
	Description string   `yaml:"description"`
	Rate        float64  `yaml:"rate"`
	Prefixes    []string `yaml:"prefixes"`
}

// ScheduleLoader lê o cronograma de Path, ou o embutido quando Path é vazio.
type ScheduleLoader struct {
	Path string
}

func NewScheduleLoader(path string) interfaces.ConfigLoader {
	return &ScheduleLoader{Path: path}
}

func (l *ScheduleLoader) Load(ctx context.Context) (*domain.Config, error) {
	if l.Path == "" {
		return ParseSchedule(defaultSchedule)
	}
	return LoadSchedule(l.Path)
}

// LoadDefault lê o cronograma embutido no binário.
func LoadDefault() (*domain.Config, error) {
	return ParseSchedule(defaultSchedule)
}

func LoadSchedule(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file %s: %w", path, err)
	}
	cfg, err := ParseSchedule(data)
	if err != nil {
		return nil, fmt.Errorf("schedule file %s: %w", path, err)
	}
	return cfg, nil
}

func ParseSchedule(data []byte) (*domain.Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc scheduleFile
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSchedule, err)
	}

	years := make([]domain.YearScheduleEntry, 0, len(doc.Years))
	for _, y := range doc.Years {
		years = append(years, domain.YearScheduleEntry{
			Year:                y.Year,
			Phase:               y.Phase,
			Description:         y.Description,
			CBSRate:             decimal.NewFromFloat(y.CBS),
			IBSRate:             decimal.NewFromFloat(y.IBS),
			SelectiveTaxApplies: y.SelectiveTax,
			ICMSFactor:          decimal.NewFromFloat(y.LegacyFactors.ICMS),
			PISCOFINSFactor:     decimal.NewFromFloat(y.LegacyFactors.PISCOFINS),
			IPIFactor:           decimal.NewFromFloat(y.LegacyFactors.IPI),
			Source:              domain.Source(y.Source),
		})
	}

	categories := make([]domain.SelectiveTaxCategory, 0, len(doc.SelectiveTax))
	for _, c := range doc.SelectiveTax {
		categories = append(categories, domain.SelectiveTaxCategory{
			Prefixes:    c.Prefixes,
			Rate:        decimal.NewFromFloat(c.Rate),
			Description: c.Description,
		})
	}

	return domain.NewConfig(years, categories)
}
