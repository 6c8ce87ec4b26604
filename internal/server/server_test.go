package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/consultinvoice/internal/clock"
	"github.com/smallbiznis/consultinvoice/internal/config"
	consultationdomain "github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	consultationservice "github.com/smallbiznis/consultinvoice/internal/consultation/service"
	"github.com/smallbiznis/consultinvoice/internal/observability"
	obsmetrics "github.com/smallbiznis/consultinvoice/internal/observability/metrics"
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
	ratingservice "github.com/smallbiznis/consultinvoice/internal/rating/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConsultationService struct {
	listed  []consultationdomain.Period
	listErr error
	rates   ratingdomain.Table
}

func (f *fakeConsultationService) List(ctx context.Context, req consultationdomain.ListRequest) (consultationdomain.ListResponse, error) {
	f.listed = append(f.listed, req.Period)
	if f.listErr != nil {
		return consultationdomain.ListResponse{}, f.listErr
	}
	return consultationdomain.ListResponse{
		Period: consultationdomain.PeriodView{Year: req.Period.Year, Month: int(req.Period.Month)},
		Consultations: []consultationdomain.Record{{
			ID:               "stripe_ch_1",
			Source:           consultationdomain.SourceStripe,
			ServiceType:      "Initial Consultation",
			Amount:           decimal.NewFromInt(100),
			CalculatedAmount: decimal.NewFromInt(100),
			Status:           consultationdomain.StatusPending,
		}},
		Sources:      consultationdomain.SourceCounts{Stripe: 1, Total: 1},
		SourceStates: consultationdomain.SourceStates{Stripe: consultationdomain.SourceStateOK, GoHighLevel: consultationdomain.SourceStateUnconfigured},
	}, nil
}

func (f *fakeConsultationService) Summarize(ctx context.Context, req consultationdomain.SummaryRequest) (consultationdomain.Summary, error) {
	return consultationservice.Summarize(req.Consultations, f.rates), nil
}

func newTestServer(t *testing.T, svc *fakeConsultationService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if svc.rates.Rates == nil {
		svc.rates = ratingdomain.DefaultTable()
	}
	engine := NewEngine(observability.Config{Environment: "test"}, obsmetrics.NewHTTPMetrics(prometheus.NewRegistry()))
	s := NewServer(ServerParams{
		Gin:             engine,
		Cfg:             config.Config{PracticeTimezone: "Australia/Sydney"},
		Log:             zap.NewNop(),
		Clock:           clock.NewFakeClock(time.Date(2024, time.March, 31, 20, 0, 0, 0, time.UTC)),
		ConsultationSvc: svc,
		RatingSvc:       ratingservice.NewStatic(svc.rates),
	})
	s.RegisterRoutes()
	return engine
}

func doRequest(engine http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestListConsultations(t *testing.T) {
	svc := &fakeConsultationService{}
	engine := newTestServer(t, svc)

	w := doRequest(engine, http.MethodGet, "/consultations?year=2024&month=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"stripe": 1.0, "gohighlevel": 0.0, "total": 1.0}, body["sources"])
	assert.Equal(t, map[string]any{"stripe": "ok", "gohighlevel": "unconfigured"}, body["sourceStates"])
	records := body["consultations"].([]any)
	require.Len(t, records, 1)
	assert.Equal(t, 100.0, records[0].(map[string]any)["calculatedAmount"])

	require.Len(t, svc.listed, 1)
	assert.Equal(t, consultationdomain.Period{Year: 2024, Month: time.February}, svc.listed[0])
}

func TestListConsultationsDefaultsToCurrentPracticeMonth(t *testing.T) {
	svc := &fakeConsultationService{}
	engine := newTestServer(t, svc)

	for _, target := range []string{"/consultations", "/api/consultations?year=2023"} {
		w := doRequest(engine, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, w.Code, target)
	}

	// 20:00 UTC on Mar 31 is already April in Sydney.
	require.Len(t, svc.listed, 2)
	for _, p := range svc.listed {
		assert.Equal(t, consultationdomain.Period{Year: 2024, Month: time.April}, p)
	}
}

func TestListConsultationsRejectsMalformedPeriod(t *testing.T) {
	engine := newTestServer(t, &fakeConsultationService{})

	tests := []string{
		"/consultations?year=abc&month=3",
		"/consultations?year=2024&month=13",
		"/consultations?year=2024&month=0",
		"/consultations?year=99&month=3",
	}
	for _, target := range tests {
		w := doRequest(engine, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["success"], target)
		assert.NotEmpty(t, body["error"], target)
	}
}

func TestListConsultationsInternalError(t *testing.T) {
	engine := newTestServer(t, &fakeConsultationService{listErr: errors.New("lookup failed for jane@example.com")})

	w := doRequest(engine, http.MethodGet, "/consultations?year=2024&month=3", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "lookup failed for [email]", body["error"])
}

func TestSummarize(t *testing.T) {
	engine := newTestServer(t, &fakeConsultationService{})

	payload := []byte(`{"consultations":[
		{"id":"a","serviceType":"Initial Consultation","calculatedAmount":100,"status":"approved"},
		{"id":"b","serviceType":"Initial Consultation","calculatedAmount":100,"status":"approved"},
		{"id":"c","serviceType":"","calculatedAmount":100,"status":"approved"},
		{"id":"d","serviceType":"Repeat Script","calculatedAmount":33,"status":"rejected"},
		{"id":"e","serviceType":"Repeat Script","calculatedAmount":33,"status":"pending"}
	]}`)
	w := doRequest(engine, http.MethodPost, "/summary", payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	summary := body["summary"].(map[string]any)
	assert.Equal(t, 300.0, summary["grandTotal"])
	assert.Equal(t, 3.0, summary["approvedCount"])
	assert.Equal(t, 1.0, summary["rejectedCount"])
	assert.Equal(t, 1.0, summary["pendingCount"])

	breakdown := summary["serviceBreakdown"].([]any)
	require.Len(t, breakdown, 2)
	assert.Equal(t, "Initial Consultation", breakdown[0].(map[string]any)["serviceType"])
	assert.Equal(t, "Consultation", breakdown[1].(map[string]any)["serviceType"])
	assert.Equal(t, 85.0, summary["rates"].(map[string]any)["Pathology Review"])
}

func TestSummarizeEmptyBody(t *testing.T) {
	engine := newTestServer(t, &fakeConsultationService{})

	w := doRequest(engine, http.MethodPost, "/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody(t, w)["summary"].(map[string]any)
	assert.Equal(t, 0.0, summary["grandTotal"])
	assert.Equal(t, []any{}, summary["serviceBreakdown"])
}

func TestSummarizeMalformedBody(t *testing.T) {
	engine := newTestServer(t, &fakeConsultationService{})

	w := doRequest(engine, http.MethodPost, "/summary", []byte(`{"consultations":[`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "invalid_body")
}

func TestListRates(t *testing.T) {
	engine := newTestServer(t, &fakeConsultationService{})

	w := doRequest(engine, http.MethodGet, "/rates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 100.0, body["defaultRate"])
	assert.Equal(t, 33.0, body["rates"].(map[string]any)["Repeat Script"])
}

func TestPreflightAndHealth(t *testing.T) {
	engine := newTestServer(t, &fakeConsultationService{})

	w := doRequest(engine, http.MethodOptions, "/consultations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))

	w = doRequest(engine, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestParsePeriod(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	p, err := parsePeriod(" 2023 ", "12", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, consultationdomain.Period{Year: 2023, Month: time.December}, p)

	p, err = parsePeriod("", "", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, consultationdomain.Period{Year: 2024, Month: time.June}, p)

	_, err = parsePeriod("2024", "x", now, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}
