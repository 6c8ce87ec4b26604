package service

import (
	"testing"
	"time"

	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	"github.com/stretchr/testify/assert"
)

func rec(id, email string, day int) domain.Record {
	return domain.Record{
		ID:           id,
		PatientEmail: email,
		Date:         time.Date(2024, time.March, day, 9, 0, 0, 0, time.UTC),
		Status:       domain.StatusPending,
	}
}

func ids(records []domain.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestMergeDropsEventsMatchingPaidEmail(t *testing.T) {
	paid := []domain.Record{rec("stripe_a", "a@x.com", 5)}
	events := []domain.Record{
		rec("ghl_1", "A@X.com", 6),
		rec("ghl_2", "b@x.com", 7),
	}

	got := Merge(paid, events)

	assert.Equal(t, []string{"ghl_2", "stripe_a"}, ids(got))
}

func TestMergeKeepsEventsWithoutEmail(t *testing.T) {
	paid := []domain.Record{rec("stripe_a", "", 5)}
	events := []domain.Record{rec("ghl_1", "", 6)}

	got := Merge(paid, events)

	assert.Equal(t, []string{"ghl_1", "stripe_a"}, ids(got))
}

func TestMergeEmptyInputs(t *testing.T) {
	events := []domain.Record{rec("ghl_1", "a@x.com", 6)}
	assert.Equal(t, []string{"ghl_1"}, ids(Merge(nil, events)))

	paid := []domain.Record{rec("stripe_a", "a@x.com", 6)}
	assert.Equal(t, []string{"stripe_a"}, ids(Merge(paid, nil)))

	got := Merge(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMergeKeepsDuplicatePaidEmails(t *testing.T) {
	paid := []domain.Record{
		rec("stripe_a", "a@x.com", 5),
		rec("stripe_b", "a@x.com", 12),
	}

	got := Merge(paid, nil)

	assert.Equal(t, []string{"stripe_b", "stripe_a"}, ids(got))
}

func TestMergeSortIsStableForEqualDates(t *testing.T) {
	paid := []domain.Record{rec("stripe_a", "a@x.com", 5), rec("stripe_b", "b@x.com", 5)}
	events := []domain.Record{rec("ghl_1", "", 5)}

	got := Merge(paid, events)

	assert.Equal(t, []string{"stripe_a", "stripe_b", "ghl_1"}, ids(got))
}

func TestMergeDropsSecondAppointmentOfPayingPatient(t *testing.T) {
	paid := []domain.Record{rec("stripe_a", "a@x.com", 3)}
	events := []domain.Record{rec("ghl_1", "a@x.com", 20)}

	got := Merge(paid, events)

	assert.Equal(t, []string{"stripe_a"}, ids(got))
}
