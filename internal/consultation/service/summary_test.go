package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priced(serviceType string, amount int64, status domain.Status) domain.Record {
	return domain.Record{
		ServiceType:      serviceType,
		CalculatedAmount: decimal.NewFromInt(amount),
		Status:           status,
	}
}

func TestSummarizeGroupsApprovedInFirstSeenOrder(t *testing.T) {
	records := []domain.Record{
		priced("Follow-up Consultation", 50, domain.StatusApproved),
		priced("Initial Consultation", 100, domain.StatusApproved),
		priced("Follow-up Consultation", 50, domain.StatusApproved),
		priced("Repeat Script", 33, domain.StatusRejected),
		priced("Pathology Review", 85, domain.StatusPending),
	}

	summary := Summarize(records, ratingdomain.DefaultTable())

	require.Len(t, summary.ServiceBreakdown, 2)
	assert.Equal(t, "Follow-up Consultation", summary.ServiceBreakdown[0].ServiceType)
	assert.Equal(t, 2, summary.ServiceBreakdown[0].Count)
	assert.True(t, summary.ServiceBreakdown[0].Subtotal.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "Initial Consultation", summary.ServiceBreakdown[1].ServiceType)
	assert.True(t, summary.GrandTotal.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 3, summary.ApprovedCount)
	assert.Equal(t, 1, summary.RejectedCount)
	assert.Equal(t, 1, summary.PendingCount)
	assert.Len(t, summary.Rates, 5)
}

func TestSummarizeEmptyServiceTypeFallsBack(t *testing.T) {
	records := []domain.Record{
		priced("", 100, domain.StatusApproved),
		priced("Consultation", 100, domain.StatusApproved),
	}

	summary := Summarize(records, ratingdomain.DefaultTable())

	require.Len(t, summary.ServiceBreakdown, 1)
	assert.Equal(t, "Consultation", summary.ServiceBreakdown[0].ServiceType)
	assert.Equal(t, 2, summary.ServiceBreakdown[0].Count)
}

func TestSummarizeRateIsFirstMemberAmount(t *testing.T) {
	records := []domain.Record{
		priced("Consultation", 90, domain.StatusApproved),
		priced("Consultation", 100, domain.StatusApproved),
	}

	summary := Summarize(records, ratingdomain.DefaultTable())

	require.Len(t, summary.ServiceBreakdown, 1)
	assert.True(t, summary.ServiceBreakdown[0].Rate.Equal(decimal.NewFromInt(90)))
	assert.True(t, summary.ServiceBreakdown[0].Subtotal.Equal(decimal.NewFromInt(190)))
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, ratingdomain.DefaultTable())

	assert.NotNil(t, summary.ServiceBreakdown)
	assert.Empty(t, summary.ServiceBreakdown)
	assert.True(t, summary.GrandTotal.IsZero())
	assert.Zero(t, summary.ApprovedCount)
	assert.Zero(t, summary.RejectedCount)
	assert.Zero(t, summary.PendingCount)
}

func TestSummarizeGrandTotalMatchesSubtotals(t *testing.T) {
	records := []domain.Record{
		priced("Consultation", 100, domain.StatusApproved),
		priced("Repeat Script", 33, domain.StatusApproved),
		priced("Pathology Review", 85, domain.StatusApproved),
		priced("Repeat Script", 33, domain.StatusApproved),
	}

	summary := Summarize(records, ratingdomain.DefaultTable())

	sum := decimal.Zero
	count := 0
	for _, g := range summary.ServiceBreakdown {
		sum = sum.Add(g.Subtotal)
		count += g.Count
	}
	assert.True(t, summary.GrandTotal.Equal(sum))
	assert.Equal(t, summary.ApprovedCount, count)
}

func TestSummarizeCountsOnlyKnownStatuses(t *testing.T) {
	records := []domain.Record{
		priced("Consultation", 100, domain.StatusPending),
		priced("Consultation", 100, ""),
		priced("Consultation", 100, domain.Status("on-hold")),
	}

	summary := Summarize(records, ratingdomain.DefaultTable())

	assert.Equal(t, 1, summary.PendingCount)
	assert.Zero(t, summary.ApprovedCount)
	assert.Zero(t, summary.RejectedCount)
	assert.Empty(t, summary.ServiceBreakdown)
}
