package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Victor-armando18/service-tax-transition/internal/config"
	"github.com/Victor-armando18/service-tax-transition/internal/domain/transition"
	"github.com/Victor-armando18/service-tax-transition/internal/infrastructure"
	"github.com/Victor-armando18/service-tax-transition/internal/infrastructure/calculator"
	"github.com/Victor-armando18/service-tax-transition/internal/infrastructure/yaml"
	"github.com/Victor-armando18/service-tax-transition/internal/logger"
	"github.com/Victor-armando18/service-tax-transition/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	noErr(err)

	log, err := logger.New(logger.Config{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	noErr(err)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Cronograma inválido é erro de configuração: falha no startup, nunca por requisição.
	schedule, err := yaml.NewScheduleLoader(cfg.SchedulePath).Load(ctx)
	if err != nil {
		log.Fatal("failed to load transition schedule", zap.Error(err))
	}

	rules := infrastructure.NewFileRuleLoader(cfg.RulesDir)
	if _, err := rules.Load(ctx, cfg.RulesVersion); err != nil {
		log.Fatal("failed to load guard rules", zap.String("version", cfg.RulesVersion), zap.Error(err))
	}

	client := calculator.NewClient(calculator.Options{
		BaseURL:     cfg.CalculatorURL,
		FallbackURL: cfg.CalculatorFallbackURL,
		Timeout:     cfg.CalculatorTimeout,
	}, log.Named("calculator"))

	svc := usecase.NewProjectionService(usecase.Params{
		Engine:       transition.NewEngine(schedule),
		Calculator:   client,
		RuleLoader:   rules,
		RuleExecutor: infrastructure.NewJsonLogicExecutor(),
		RulesVersion: cfg.RulesVersion,
		Logger:       log.Named("projection"),
	})

	e := newRouter(&api{
		svc:       svc,
		reference: client,
		schedule:  schedule,
		online:    client.Online(),
		now:       time.Now,
		logger:    log.Named("http"),
	}, cfg.CORSOrigins)

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.Bool("online", client.Online()))
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
	}
}

func noErr(err error) {
	if err != nil {
		panic("failed to initialize something important: " + err.Error())
	}
}
