package review

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	obscontext "github.com/smallbiznis/consultinvoice/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientListConsultations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/consultations", r.URL.Path)
		assert.Equal(t, "2024", r.URL.Query().Get("year"))
		assert.Equal(t, "3", r.URL.Query().Get("month"))
		assert.Equal(t, "corr-1", r.Header.Get("X-Correlation-Id"))
		_, _ = io.WriteString(w, `{"success":true,"period":{"year":2024,"month":3},
			"consultations":[{"id":"stripe_1","source":"stripe","calculatedAmount":100,"amount":100,"status":"pending","date":"2024-03-05T00:00:00Z"}],
			"sources":{"stripe":1,"gohighlevel":0,"total":1},
			"sourceStates":{"stripe":"ok","gohighlevel":"unconfigured"}}`)
	}))
	defer srv.Close()

	ctx := obscontext.WithCorrelationID(context.Background(), "corr-1")
	resp, err := NewClient(srv.URL+"/").ListConsultations(ctx, march)
	require.NoError(t, err)
	require.Len(t, resp.Consultations, 1)
	assert.Equal(t, "stripe_1", resp.Consultations[0].ID)
	assert.True(t, resp.Consultations[0].CalculatedAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, resp.Sources.Total)
	assert.Equal(t, domain.SourceStateUnconfigured, resp.SourceStates.GoHighLevel)
}

func TestClientSummaryPostsRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body struct {
			Consultations []domain.Record `json:"consultations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Consultations, 2)
		_, _ = io.WriteString(w, `{"success":true,"summary":{"serviceBreakdown":[],"grandTotal":0,"approvedCount":0,"rejectedCount":0,"pendingCount":2,"rates":{}}}`)
	}))
	defer srv.Close()

	summary, err := NewClient(srv.URL).Summary(context.Background(), []domain.Record{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.PendingCount)
}

func TestClientRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"rates":{"Consultation":100,"Repeat Script":33},"defaultRate":100}`)
	}))
	defer srv.Close()

	table, err := NewClient(srv.URL).Rates(context.Background())
	require.NoError(t, err)
	assert.True(t, table.Rates["Repeat Script"].Equal(decimal.NewFromInt(33)))
	assert.True(t, table.Default.Equal(decimal.NewFromInt(100)))
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"error":"invalid_period"}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListConsultations(context.Background(), march)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAPIUnavailable))
	assert.Contains(t, err.Error(), "invalid_period")

	_, err = NewClient("http://127.0.0.1:1").ListConsultations(context.Background(), march)
	assert.ErrorIs(t, err, ErrAPIUnavailable)
}
