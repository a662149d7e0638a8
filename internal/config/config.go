package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config é a configuração do processo, lida do ambiente.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr    string `env:"TRANSITION_HTTP_ADDR" envDefault:":8000"`

	CalculatorURL         string        `env:"CALCULADORA_URL" envDefault:"https://consumo.tributos.gov.br/servico/calcular-tributos-consumo"`
	CalculatorFallbackURL string        `env:"CALCULADORA_FALLBACK_URL" envDefault:"http://localhost:8080"`
	CalculatorTimeout     time.Duration `env:"CALCULADORA_TIMEOUT" envDefault:"30s"`

	// SchedulePath vazio usa o cronograma embutido no binário.
	SchedulePath string `env:"TRANSITION_SCHEDULE_PATH"`
	RulesDir     string `env:"TRANSITION_RULES_DIR" envDefault:"pkg/rules"`
	RulesVersion string `env:"TRANSITION_RULES_VERSION" envDefault:"v1"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://127.0.0.1:5173"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
