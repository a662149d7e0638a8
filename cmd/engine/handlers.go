package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/Victor-armando18/service-tax-transition/internal/infrastructure"
	"github.com/Victor-armando18/service-tax-transition/internal/infrastructure/calculator"
	"github.com/Victor-armando18/service-tax-transition/internal/interfaces"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// referenceSource são os endpoints da calculadora repassados sem transformação.
type referenceSource interface {
	TaxSituations(ctx context.Context, date string) (json.RawMessage, error)
	TaxClassifications(ctx context.Context, cstID int, date string) (json.RawMessage, error)
	GenerateXML(ctx context.Context, payload json.RawMessage) (*calculator.GeneratedDocument, error)
}

type api struct {
	svc       interfaces.ProjectionFacade
	reference referenceSource
	schedule  *domain.Config
	online    bool
	now       func() time.Time
	logger    *zap.Logger
}

type PatchRequest struct {
	Invoice domain.Invoice  `json:"nota"`
	Patch   json.RawMessage `json:"patch"`
}

type XMLRequest struct {
	Result json.RawMessage `json:"resultado"`
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func newRouter(a *api, origins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	e.GET("/health", a.handleHealth)
	e.GET("/schedule", a.handleSchedule)

	g := e.Group("/api")
	g.POST("/calcular", a.handleCalculate)
	g.PATCH("/calcular", a.handlePatch)
	g.POST("/calcular-rtc", a.handleCalculateRTC)
	g.GET("/situacoes-tributarias", a.handleTaxSituations)
	g.GET("/classificacoes-tributarias/:cstId", a.handleTaxClassifications)
	g.POST("/gerar-xml", a.handleGenerateXML)

	return e
}

func (a *api) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "Simulador IBS/CBS Backend"})
}

type scheduleYearView struct {
	Year                int             `json:"ano"`
	Phase               string          `json:"fase"`
	Description         string          `json:"descricao"`
	CBSRate             decimal.Decimal `json:"cbs"`
	IBSRate             decimal.Decimal `json:"ibs"`
	SelectiveTaxApplies bool            `json:"aplicaIS"`
	ICMSFactor          decimal.Decimal `json:"icmsFator"`
	PISCOFINSFactor     decimal.Decimal `json:"pisCofinsFator"`
	IPIFactor           decimal.Decimal `json:"ipiFator"`
	Source              domain.Source   `json:"fonte"`
}

type categoryView struct {
	Prefixes    []string        `json:"prefixes"`
	Rate        decimal.Decimal `json:"rate"`
	Description string          `json:"desc"`
}

func (a *api) handleSchedule(c echo.Context) error {
	years := a.schedule.Years()
	yv := make([]scheduleYearView, 0, len(years))
	for _, y := range years {
		yv = append(yv, scheduleYearView{
			Year:                y.Year,
			Phase:               y.Phase,
			Description:         y.Description,
			CBSRate:             y.CBSRate,
			IBSRate:             y.IBSRate,
			SelectiveTaxApplies: y.SelectiveTaxApplies,
			ICMSFactor:          y.ICMSFactor,
			PISCOFINSFactor:     y.PISCOFINSFactor,
			IPIFactor:           y.IPIFactor,
			Source:              y.Source,
		})
	}

	cats := a.schedule.Categories()
	cv := make([]categoryView, 0, len(cats))
	for _, cat := range cats {
		cv = append(cv, categoryView{Prefixes: cat.Prefixes, Rate: cat.Rate, Description: cat.Description})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"anos": yv, "impostoSeletivo": cv})
}

func (a *api) handleCalculate(c echo.Context) error {
	var invoice domain.Invoice
	if err := c.Bind(&invoice); err != nil {
		return c.JSON(http.StatusBadRequest, envelope{Error: "Payload inválido"})
	}

	res, err := a.svc.Project(c.Request().Context(), invoice)
	if err != nil {
		return a.fail(c, err, "Erro na calculadora")
	}
	if len(res.GuardsHit) > 0 {
		return guardsResponse(c, res.GuardsHit)
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: a.liveData(res, nil)})
}

func (a *api) handlePatch(c echo.Context) error {
	var req PatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope{Error: "Invalid patch request"})
	}

	updated, err := infrastructure.ApplyInvoicePatch(req.Invoice, req.Patch)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, envelope{Error: err.Error()})
	}
	delta, err := infrastructure.InvoiceDelta(req.Invoice, updated)
	if err != nil {
		return a.fail(c, err, "Erro ao comparar notas")
	}

	// Re-validar e recalcular após o Patch
	res, err := a.svc.Project(c.Request().Context(), updated)
	if err != nil {
		return a.fail(c, err, "Erro na calculadora")
	}
	if len(res.GuardsHit) > 0 {
		return guardsResponse(c, res.GuardsHit)
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: a.liveData(res, delta)})
}

func (a *api) liveData(res *domain.ProjectionResult, delta json.RawMessage) map[string]interface{} {
	data := map[string]interface{}{
		"resultado2026": calculator.NewLiveResult(res.Live),
		"transicao":     years(res.Years),
		"fonte":         a.fonte(),
	}
	if delta != nil {
		data["delta"] = delta
	}
	return data
}

func (a *api) handleCalculateRTC(c echo.Context) error {
	var invoice domain.Invoice
	if err := c.Bind(&invoice); err != nil {
		return c.JSON(http.StatusBadRequest, envelope{Error: "Payload inválido"})
	}

	res, err := a.svc.ProjectPerYear(c.Request().Context(), invoice)
	if err != nil {
		return a.fail(c, err, "Erro na calculadora RTC")
	}
	if len(res.GuardsHit) > 0 {
		return guardsResponse(c, res.GuardsHit)
	}

	// resultado2026 vem só do próprio 2026; se ele foi ignorado, sai vazio.
	var first *domain.YearResult
	for i := range res.Years {
		if res.Years[i].Year == domain.FirstTransitionYear {
			first = &res.Years[i]
			break
		}
	}

	skipped := res.SkippedYears
	if skipped == nil {
		skipped = []int{}
	}

	return c.JSON(http.StatusOK, envelope{Success: true, Data: map[string]interface{}{
		"resultado2026": calculator.LiveResultFromYear(first),
		"transicao":     years(res.Years),
		"anosIgnorados": skipped,
		"fonte":         a.fonte(),
		"metodo":        string(domain.MethodPerYearRTC),
	}})
}

func (a *api) handleTaxSituations(c echo.Context) error {
	out, err := a.reference.TaxSituations(c.Request().Context(), a.today())
	if err != nil {
		return a.fail(c, err, "Erro ao buscar situações tributárias")
	}
	return c.JSONBlob(http.StatusOK, out)
}

func (a *api) handleTaxClassifications(c echo.Context) error {
	cstID, err := strconv.Atoi(c.Param("cstId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope{Error: "cstId inválido"})
	}
	out, err := a.reference.TaxClassifications(c.Request().Context(), cstID, a.today())
	if err != nil {
		return a.fail(c, err, "Erro ao buscar classificações")
	}
	return c.JSONBlob(http.StatusOK, out)
}

func (a *api) handleGenerateXML(c echo.Context) error {
	var req XMLRequest
	if err := c.Bind(&req); err != nil || len(req.Result) == 0 {
		return c.JSON(http.StatusBadRequest, envelope{Error: "Payload inválido"})
	}

	doc, err := a.reference.GenerateXML(c.Request().Context(), req.Result)
	if err != nil {
		return a.fail(c, err, "Erro ao gerar XML")
	}
	if doc.XML != "" {
		return c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, []byte(doc.XML))
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: doc.JSON})
}

func guardsResponse(c echo.Context, hits []domain.GuardViolation) error {
	return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
		"success": false,
		"error":   "Blocked by Guards",
		"guards":  hits,
	})
}

func (a *api) fail(c echo.Context, err error, prefix string) error {
	var statusErr *calculator.StatusError
	switch {
	case errors.As(err, &statusErr):
		return c.JSON(statusErr.StatusCode, envelope{Error: fmt.Sprintf("%s: %s", prefix, statusErr.Body)})
	case errors.Is(err, domain.ErrCalculatorUnavailable):
		return c.JSON(http.StatusServiceUnavailable, envelope{
			Error: "Calculadora RTC indisponível. Verifique a conexão ou inicie a API local em localhost:8080.",
		})
	case errors.Is(err, domain.ErrRulePackNotFound):
		a.logger.Error("guard rule pack missing", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, envelope{Error: err.Error()})
	default:
		a.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, envelope{Error: err.Error()})
	}
}

func (a *api) fonte() string {
	if a.online {
		return "online"
	}
	return "local"
}

func (a *api) today() string {
	return a.now().In(time.FixedZone("BRT", -3*60*60)).Format("2006-01-02")
}

func years(ys []domain.YearResult) []domain.YearResult {
	if ys == nil {
		return []domain.YearResult{}
	}
	return ys
}
