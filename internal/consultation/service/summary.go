package service

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
)

// Summarize totals approved records per service type.
//
// Groups appear in the order their first approved record appears. A group's
// rate is the calculated amount of that first record; the subtotal sums every
// member's calculated amount. Records with no status are not counted.
func Summarize(records []domain.Record, table ratingdomain.Table) domain.Summary {
	summary := domain.Summary{
		ServiceBreakdown: []domain.ServiceBreakdown{},
		GrandTotal:       decimal.Zero,
		Rates:            table.Clone().Rates,
	}

	index := make(map[string]int)
	for _, rec := range records {
		switch rec.Status {
		case domain.StatusApproved:
			summary.ApprovedCount++
		case domain.StatusRejected:
			summary.RejectedCount++
			continue
		case domain.StatusPending:
			summary.PendingCount++
			continue
		default:
			continue
		}

		key := rec.EffectiveServiceType()
		i, ok := index[key]
		if !ok {
			i = len(summary.ServiceBreakdown)
			index[key] = i
			summary.ServiceBreakdown = append(summary.ServiceBreakdown, domain.ServiceBreakdown{
				ServiceType: key,
				Rate:        rec.CalculatedAmount,
				Subtotal:    decimal.Zero,
			})
		}
		group := &summary.ServiceBreakdown[i]
		group.Count++
		group.Subtotal = group.Subtotal.Add(rec.CalculatedAmount)
		summary.GrandTotal = summary.GrandTotal.Add(rec.CalculatedAmount)
	}

	return summary
}
