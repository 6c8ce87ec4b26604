package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	obscontext "github.com/smallbiznis/consultinvoice/internal/observability/context"
	obslogger "github.com/smallbiznis/consultinvoice/internal/observability/logger"
	"github.com/smallbiznis/consultinvoice/internal/observability/tracing"
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
)

const (
	clientTimeout = 15 * time.Second
	tracerName    = "consultinvoice/review"
)

var ErrAPIUnavailable = errors.New("api_unavailable")

// Client talks to the consultation HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: clientTimeout},
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type listEnvelope struct {
	envelope
	domain.ListResponse
}

type summaryEnvelope struct {
	envelope
	Summary domain.Summary `json:"summary"`
}

type ratesEnvelope struct {
	envelope
	Rates       map[string]decimal.Decimal `json:"rates"`
	DefaultRate decimal.Decimal            `json:"defaultRate"`
}

func (c *Client) ListConsultations(ctx context.Context, period domain.Period) (domain.ListResponse, error) {
	values := url.Values{}
	values.Set("year", strconv.Itoa(period.Year))
	values.Set("month", strconv.Itoa(int(period.Month)))

	var out listEnvelope
	if err := c.do(ctx, http.MethodGet, "/consultations?"+values.Encode(), nil, &out.envelope, &out); err != nil {
		return domain.ListResponse{}, err
	}
	return out.ListResponse, nil
}

func (c *Client) Summary(ctx context.Context, records []domain.Record) (domain.Summary, error) {
	if records == nil {
		records = []domain.Record{}
	}
	body, err := json.Marshal(map[string]any{"consultations": records})
	if err != nil {
		return domain.Summary{}, err
	}

	var out summaryEnvelope
	if err := c.do(ctx, http.MethodPost, "/summary", body, &out.envelope, &out); err != nil {
		return domain.Summary{}, err
	}
	return out.Summary, nil
}

func (c *Client) Rates(ctx context.Context) (ratingdomain.Table, error) {
	var out ratesEnvelope
	if err := c.do(ctx, http.MethodGet, "/rates", nil, &out.envelope, &out); err != nil {
		return ratingdomain.Table{}, err
	}
	table := ratingdomain.Table{Rates: out.Rates, Default: out.DefaultRate}
	if err := ratingdomain.Validate(table); err != nil {
		return ratingdomain.Table{}, fmt.Errorf("rates from api: %w", err)
	}
	return table, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, env *envelope, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := obscontext.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(obslogger.HeaderCorrelationID, id)
	}

	req, span := tracing.StartClientSpan(req, tracerName, "api "+method+" "+strings.SplitN(path, "?", 2)[0])
	resp, err := c.http.Do(req)
	if err != nil {
		tracing.EndClientSpan(span, 0, err)
		return fmt.Errorf("%w: %v", ErrAPIUnavailable, err)
	}
	defer resp.Body.Close()
	tracing.EndClientSpan(span, resp.StatusCode, nil)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: status %d: decode: %v", ErrAPIUnavailable, resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		msg := strings.TrimSpace(env.Error)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d: %s", ErrAPIUnavailable, resp.StatusCode, msg)
	}
	return nil
}
