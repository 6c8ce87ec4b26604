package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/consultinvoice/internal/approval/repository"
	approvalservice "github.com/smallbiznis/consultinvoice/internal/approval/service"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march = domain.Period{Year: 2024, Month: time.March}

type apiStub struct {
	list       domain.ListResponse
	listErr    error
	ratesErr   error
	summary    domain.Summary
	summaryErr error
	summarized []domain.Record
}

func (a *apiStub) ListConsultations(ctx context.Context, period domain.Period) (domain.ListResponse, error) {
	return a.list, a.listErr
}

func (a *apiStub) Summary(ctx context.Context, records []domain.Record) (domain.Summary, error) {
	a.summarized = records
	return a.summary, a.summaryErr
}

func (a *apiStub) Rates(ctx context.Context) (ratingdomain.Table, error) {
	if a.ratesErr != nil {
		return ratingdomain.Table{}, a.ratesErr
	}
	return ratingdomain.DefaultTable(), nil
}

func liveRecords() []domain.Record {
	return []domain.Record{
		{ID: "stripe_a", Source: domain.SourceStripe, ServiceType: "Initial Consultation",
			CalculatedAmount: decimal.NewFromInt(100), Status: domain.StatusPending,
			Date: time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)},
		{ID: "ghl_b", Source: domain.SourceGoHighLevel, ServiceType: "Repeat Script",
			CalculatedAmount: decimal.NewFromInt(33), Status: domain.StatusPending,
			Date: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "stripe_c", Source: domain.SourceStripe, ServiceType: "Initial Consultation",
			CalculatedAmount: decimal.NewFromInt(100), Status: domain.StatusPending,
			Date: time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)},
	}
}

func newTestSession(t *testing.T, api API) (*Session, *approvalservice.Store) {
	t.Helper()
	store := approvalservice.New(repository.NewMemoryKV(), nil)
	return NewSession(api, store, time.UTC, nil), store
}

func TestLoadOverlaysStoredDecisions(t *testing.T) {
	api := &apiStub{list: domain.ListResponse{Consultations: liveRecords()}}
	session, store := newTestSession(t, api)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, march, "ghl_b", domain.StatusRejected))
	require.NoError(t, session.Load(ctx, march))

	assert.False(t, session.Demo())
	records := session.Records()
	require.Len(t, records, 3)
	assert.Equal(t, domain.StatusRejected, records[1].Status)
	assert.Equal(t, domain.StatusPending, records[0].Status)
}

func TestLoadFallsBackToDemoData(t *testing.T) {
	api := &apiStub{listErr: errors.New("connection refused"), ratesErr: errors.New("connection refused")}
	session, _ := newTestSession(t, api)

	require.NoError(t, session.Load(context.Background(), march))
	assert.True(t, session.Demo())

	records := session.Records()
	require.Len(t, records, 5)
	assert.Equal(t, "mock_1", records[0].ID)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.True(t, records[2].CalculatedAmount.Equal(decimal.NewFromInt(85)))
	assert.True(t, records[4].CalculatedAmount.Equal(decimal.NewFromInt(33)))
	assert.True(t, records[2].Amount.IsZero())
}

func TestLoadRejectsInvalidPeriod(t *testing.T) {
	session, _ := newTestSession(t, &apiStub{})
	assert.ErrorIs(t, session.Load(context.Background(), domain.Period{Year: 1999, Month: 1}), domain.ErrInvalidPeriod)
}

func TestSetStatusPersists(t *testing.T) {
	api := &apiStub{list: domain.ListResponse{Consultations: liveRecords()}}
	session, store := newTestSession(t, api)
	ctx := context.Background()
	require.NoError(t, session.Load(ctx, march))

	require.NoError(t, session.SetStatus(ctx, "stripe_a", domain.StatusApproved))
	status, ok, err := store.Get(ctx, march, "stripe_a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusApproved, status)

	assert.ErrorIs(t, session.SetStatus(ctx, "nope", domain.StatusApproved), domain.ErrRecordNotFound)
	assert.ErrorIs(t, session.SetStatus(ctx, "stripe_a", "maybe"), domain.ErrInvalidStatus)
}

func TestApproveAllOnlyTouchesPending(t *testing.T) {
	api := &apiStub{list: domain.ListResponse{Consultations: liveRecords()}}
	session, store := newTestSession(t, api)
	ctx := context.Background()
	require.NoError(t, session.Load(ctx, march))
	require.NoError(t, session.SetStatus(ctx, "ghl_b", domain.StatusRejected))

	n, err := session.ApproveAllPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records := session.Records()
	assert.Equal(t, domain.StatusApproved, records[0].Status)
	assert.Equal(t, domain.StatusRejected, records[1].Status)
	assert.Equal(t, domain.StatusApproved, records[2].Status)

	status, _, err := store.Get(ctx, march, "stripe_c")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, status)

	n, err = session.RejectAllPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestViewFiltersRowsButNotCounts(t *testing.T) {
	api := &apiStub{list: domain.ListResponse{Consultations: liveRecords()}}
	session, _ := newTestSession(t, api)
	ctx := context.Background()
	require.NoError(t, session.Load(ctx, march))
	require.NoError(t, session.SetStatus(ctx, "stripe_a", domain.StatusApproved))
	require.NoError(t, session.SetStatus(ctx, "stripe_c", domain.StatusApproved))

	v := session.View(Filter{Source: domain.SourceGoHighLevel})
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "ghl_b", v.Rows[0].ID)
	assert.Equal(t, Counts{Total: 3, Pending: 1, Approved: 2, Stripe: 2, GoHighLevel: 1}, v.Counts)
	assert.True(t, v.Summary.GrandTotal.Equal(decimal.NewFromInt(200)))
	require.Len(t, v.Summary.ServiceBreakdown, 1)
	assert.Equal(t, 2, v.Summary.ServiceBreakdown[0].Count)

	v = session.View(Filter{Status: domain.StatusApproved, Source: domain.SourceGoHighLevel})
	assert.Empty(t, v.Rows)
	assert.NotNil(t, v.Rows)
}

func TestRemoteSummaryFallsBackLocally(t *testing.T) {
	api := &apiStub{
		list:    domain.ListResponse{Consultations: liveRecords()},
		summary: domain.Summary{ApprovedCount: 42},
	}
	session, _ := newTestSession(t, api)
	ctx := context.Background()
	require.NoError(t, session.Load(ctx, march))

	summary, remote := session.RemoteSummary(ctx)
	assert.True(t, remote)
	assert.Equal(t, 42, summary.ApprovedCount)
	assert.Len(t, api.summarized, 3)

	api.summaryErr = errors.New("boom")
	summary, remote = session.RemoteSummary(ctx)
	assert.False(t, remote)
	assert.Equal(t, 3, summary.PendingCount)
}
