package calculator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/Victor-armando18/service-tax-transition/internal/interfaces"
	"go.uber.org/zap"
)

const (
	// OnlineURL é a API oficial (Receita Federal / SEFAZ).
	OnlineURL = "https://consumo.tributos.gov.br/servico/calcular-tributos-consumo"
	// LocalURL é a calculadora local usada como fallback.
	LocalURL = "http://localhost:8080"

	regimeGeralPath    = "/api/calculadora/regime-geral"
	situacoesPath      = "/api/calculadora/dados-abertos/situacoes-tributarias/cbs-ibs"
	classificacoesPath = "/api/calculadora/dados-abertos/classificacoes-tributarias/%d"
	xmlGeneratePath    = "/api/calculadora/xml/generate"

	defaultTimeout       = 30 * time.Second
	defaultLookupTimeout = 10 * time.Second
)

type Options struct {
	BaseURL       string
	FallbackURL   string
	Timeout       time.Duration
	LookupTimeout time.Duration
	HTTPClient    *http.Client
}

// Client fala com a calculadora RTC. Falha de conexão ou timeout passa para a
// próxima URL; status HTTP de erro volta como está.
type Client struct {
	urls          []string
	http          *http.Client
	lookupTimeout time.Duration
	logger        *zap.Logger
}

var _ interfaces.TaxCalculator = (*Client)(nil)

func NewClient(opts Options, logger *zap.Logger) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = OnlineURL
	}
	urls := []string{base}
	if fb := strings.TrimRight(opts.FallbackURL, "/"); fb != "" && fb != base {
		urls = append(urls, fb)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	lookupTimeout := opts.LookupTimeout
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{urls: urls, http: httpClient, lookupTimeout: lookupTimeout, logger: logger}
}

// Online indica se a URL principal é o serviço oficial.
func (c *Client) Online() bool {
	return c.urls[0] == OnlineURL
}

// StatusError é uma resposta não-2xx da calculadora.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("calculadora respondeu %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return domain.ErrCalculatorRejected }

func (c *Client) Calculate(ctx context.Context, invoice domain.Invoice) (*domain.CalculationResult, error) {
	body, err := json.Marshal(buildPayload(invoice))
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	resp, err := c.do(ctx, 0, http.MethodPost, regimeGeralPath, nil, body)
	if err != nil {
		return nil, err
	}
	return DecodeResult(resp.body)
}

// TaxSituations lista os CST de CBS/IBS vigentes na data (YYYY-MM-DD).
func (c *Client) TaxSituations(ctx context.Context, date string) (json.RawMessage, error) {
	resp, err := c.do(ctx, c.lookupTimeout, http.MethodGet, situacoesPath, url.Values{"data": {date}}, nil)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

// TaxClassifications lista os cClassTrib de um CST na data (YYYY-MM-DD).
func (c *Client) TaxClassifications(ctx context.Context, cstID int, date string) (json.RawMessage, error) {
	resp, err := c.do(ctx, c.lookupTimeout, http.MethodGet, fmt.Sprintf(classificacoesPath, cstID), url.Values{"data": {date}}, nil)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

// GeneratedDocument traz o XML em texto ou, se a calculadora responder JSON,
// o JSON bruto.
type GeneratedDocument struct {
	XML  string
	JSON json.RawMessage
}

func (c *Client) GenerateXML(ctx context.Context, payload json.RawMessage) (*GeneratedDocument, error) {
	resp, err := c.do(ctx, 0, http.MethodPost, xmlGeneratePath, nil, payload)
	if err != nil {
		return nil, err
	}
	if strings.Contains(resp.contentType, "xml") {
		return &GeneratedDocument{XML: string(resp.body)}, nil
	}
	return &GeneratedDocument{JSON: resp.body}, nil
}

type response struct {
	body        []byte
	contentType string
}

// do tenta cada URL em ordem. attemptTimeout > 0 vale para cada tentativa
// isoladamente, para o timeout da principal não consumir o prazo do fallback.
func (c *Client) do(ctx context.Context, attemptTimeout time.Duration, method, path string, query url.Values, body []byte) (*response, error) {
	var lastErr error
	for _, base := range c.urls {
		resp, err := c.attempt(ctx, attemptTimeout, method, base+path, query, body)
		if err == nil {
			return resp, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, ctxErr
		}

		c.logger.Warn("calculadora indisponível, tentando próxima URL", zap.String("url", base), zap.Error(err))
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrCalculatorUnavailable, lastErr)
}

func (c *Client) attempt(ctx context.Context, timeout time.Duration, method, rawURL string, query url.Values, body []byte) (*response, error) {
	if timeout <= 0 {
		return c.send(ctx, method, rawURL, query, body)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.send(ctx, method, rawURL, query, body)
}

func (c *Client) send(ctx context.Context, method, rawURL string, query url.Values, body []byte) (*response, error) {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return &response{body: data, contentType: resp.Header.Get("Content-Type")}, nil
}
