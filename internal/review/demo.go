package review

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
)

type demoRow struct {
	id      string
	source  domain.Source
	name    string
	email   string
	service string
	charged int64
	day     int
}

var demoRows = []demoRow{
	{"mock_1", domain.SourceStripe, "John Smith", "john@example.com", ratingdomain.ServiceInitialConsultation, 100, 5},
	{"mock_2", domain.SourceStripe, "Jane Doe", "jane@example.com", ratingdomain.ServiceFollowUpConsultation, 50, 10},
	{"mock_3", domain.SourceGoHighLevel, "Bob Wilson", "bob@example.com", ratingdomain.ServicePathologyReview, 0, 15},
	{"mock_4", domain.SourceStripe, "Alice Brown", "alice@example.com", ratingdomain.ServiceConsultation, 100, 18},
	{"mock_5", domain.SourceGoHighLevel, "Charlie Davis", "charlie@example.com", ratingdomain.ServiceRepeatScript, 0, 22},
}

// DemoRecords is the fixed sample month shown when the API cannot be reached.
func DemoRecords(period domain.Period, table ratingdomain.Table, loc *time.Location) []domain.Record {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]domain.Record, 0, len(demoRows))
	for _, row := range demoRows {
		out = append(out, domain.Record{
			ID:               row.id,
			Source:           row.source,
			PatientName:      row.name,
			PatientEmail:     row.email,
			ServiceType:      row.service,
			Amount:           decimal.NewFromInt(row.charged),
			CalculatedAmount: ratingdomain.Resolve(table, row.service),
			Date:             time.Date(period.Year, period.Month, row.day, 0, 0, 0, 0, loc).UTC(),
			Status:           domain.StatusPending,
		})
	}
	return out
}
