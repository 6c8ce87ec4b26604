package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodWindow(t *testing.T) {
	w := Period{Year: 2024, Month: time.February}.Window(time.UTC)

	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC), w.End)
}

func TestPeriodWindowUsesLocation(t *testing.T) {
	loc := time.FixedZone("AEST", 10*60*60)
	w := Period{Year: 2024, Month: time.March}.Window(loc)

	assert.Equal(t, "2024-02-29T14:00:00Z", w.Start.UTC().Format(time.RFC3339))
	assert.Equal(t, 31, w.End.Day())
}

func TestPeriodValidate(t *testing.T) {
	assert.NoError(t, Period{Year: 2024, Month: time.March}.Validate())
	assert.ErrorIs(t, Period{Year: 2024, Month: 13}.Validate(), ErrInvalidPeriod)
	assert.ErrorIs(t, Period{Year: 2024, Month: 0}.Validate(), ErrInvalidPeriod)
	assert.ErrorIs(t, Period{Year: 99, Month: time.March}.Validate(), ErrInvalidPeriod)
}

func TestPeriodNavigation(t *testing.T) {
	jan := Period{Year: 2024, Month: time.January}
	assert.Equal(t, Period{Year: 2023, Month: time.December}, jan.Prev())
	assert.Equal(t, Period{Year: 2024, Month: time.February}, jan.Next())
	assert.Equal(t, Period{Year: 2025, Month: time.January}, Period{Year: 2024, Month: time.December}.Next())
}

func TestPeriodKeyIsUnpadded(t *testing.T) {
	assert.Equal(t, "2024-3", Period{Year: 2024, Month: time.March}.Key())
	assert.Equal(t, "2024-11", Period{Year: 2024, Month: time.November}.Key())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Approved ")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)

	_, err = ParseStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRecordJSONUsesNumbers(t *testing.T) {
	rec := Record{
		ID:               "stripe_ch_1",
		Source:           SourceStripe,
		PatientName:      "Jane Doe",
		ServiceType:      "Consultation",
		Amount:           decimal.RequireFromString("100.00"),
		CalculatedAmount: decimal.NewFromInt(100),
		Date:             time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC),
		Status:           StatusPending,
		StripeChargeID:   "ch_1",
	}

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"amount":100`)
	assert.Contains(t, string(raw), `"calculatedAmount":100`)
	assert.NotContains(t, string(raw), "ghlEventId")

	var decoded Record
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded.Amount.Equal(rec.Amount))
	assert.Equal(t, rec.Date, decoded.Date)
}
