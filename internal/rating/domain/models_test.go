package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	table := DefaultTable()

	cases := []struct {
		name        string
		serviceType string
		want        int64
	}{
		{name: "exact", serviceType: "Pathology Review", want: 85},
		{name: "case insensitive", serviceType: "follow-up consultation", want: 50},
		{name: "upper case", serviceType: "REPEAT SCRIPT", want: 33},
		{name: "unknown", serviceType: "Telehealth Review", want: 100},
		{name: "empty", serviceType: "", want: 100},
		{name: "no fuzzy match", serviceType: "Pathology Reviews", want: 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(table, tc.serviceType)
			assert.True(t, got.Equal(decimal.NewFromInt(tc.want)), "got %s", got)
		})
	}
}

func TestResolvePrefersExactKey(t *testing.T) {
	table := Table{
		Rates: map[string]decimal.Decimal{
			"consult": decimal.NewFromInt(10),
			"Consult": decimal.NewFromInt(20),
		},
		Default: decimal.NewFromInt(1),
	}

	assert.True(t, Resolve(table, "Consult").Equal(decimal.NewFromInt(20)))
	assert.True(t, Resolve(table, "consult").Equal(decimal.NewFromInt(10)))
	// "CONSULT" falls back to the first canonical name in lexical order.
	assert.True(t, Resolve(table, "CONSULT").Equal(decimal.NewFromInt(20)))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(DefaultTable()))
	assert.ErrorIs(t, Validate(Table{Default: decimal.NewFromInt(1)}), ErrEmptyTable)

	bad := DefaultTable()
	bad.Default = decimal.Zero
	assert.ErrorIs(t, Validate(bad), ErrInvalidDefaultRate)

	bad = DefaultTable()
	bad.Rates["Repeat Script"] = decimal.NewFromInt(-1)
	assert.ErrorIs(t, Validate(bad), ErrInvalidRate)
}

func TestCloneDoesNotShareMap(t *testing.T) {
	table := DefaultTable()
	clone := table.Clone()
	clone.Rates["Consultation"] = decimal.NewFromInt(1)

	assert.True(t, table.Rates["Consultation"].Equal(decimal.NewFromInt(100)))
}
