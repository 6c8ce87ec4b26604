package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Canonical service names used by the default table.
const (
	ServiceInitialConsultation  = "Initial Consultation"
	ServiceConsultation         = "Consultation"
	ServicePathologyReview      = "Pathology Review"
	ServiceFollowUpConsultation = "Follow-up Consultation"
	ServiceRepeatScript         = "Repeat Script"
)

// Table is an immutable snapshot of per-service rates.
type Table struct {
	Rates   map[string]decimal.Decimal
	Default decimal.Decimal
}

// DefaultTable returns the built-in practice rates.
func DefaultTable() Table {
	return Table{
		Rates: map[string]decimal.Decimal{
			ServiceInitialConsultation:  decimal.NewFromInt(100),
			ServiceConsultation:         decimal.NewFromInt(100),
			ServicePathologyReview:      decimal.NewFromInt(85),
			ServiceFollowUpConsultation: decimal.NewFromInt(50),
			ServiceRepeatScript:         decimal.NewFromInt(33),
		},
		Default: decimal.NewFromInt(100),
	}
}

// Clone returns a copy whose map can be handed to callers.
func (t Table) Clone() Table {
	rates := make(map[string]decimal.Decimal, len(t.Rates))
	for k, v := range t.Rates {
		rates[k] = v
	}
	return Table{Rates: rates, Default: t.Default}
}

// Names returns the canonical service names in lexical order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.Rates))
	for name := range t.Rates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps a free-text service type to a rate.
//
// An exact key wins, then a case-insensitive match against the canonical
// names, then the table default. It never fails.
func Resolve(t Table, serviceType string) decimal.Decimal {
	if rate, ok := t.Rates[serviceType]; ok {
		return rate
	}
	for _, name := range t.Names() {
		if strings.EqualFold(name, serviceType) {
			return t.Rates[name]
		}
	}
	return t.Default
}

// Validate rejects tables that would price a consultation at zero or less.
func Validate(t Table) error {
	if len(t.Rates) == 0 {
		return ErrEmptyTable
	}
	if !t.Default.IsPositive() {
		return ErrInvalidDefaultRate
	}
	for name, rate := range t.Rates {
		if strings.TrimSpace(name) == "" {
			return ErrInvalidServiceName
		}
		if !rate.IsPositive() {
			return ErrInvalidRate
		}
	}
	return nil
}
