package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Source string

const (
	SourceStripe      Source = "stripe"
	SourceGoHighLevel Source = "gohighlevel"
)

func (s Source) Valid() bool {
	return s == SourceStripe || s == SourceGoHighLevel
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// ParseStatus accepts the three status names in any case.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Record is one billable consultation from either source.
type Record struct {
	ID               string          `json:"id"`
	Source           Source          `json:"source"`
	PatientName      string          `json:"patientName"`
	PatientEmail     string          `json:"patientEmail"`
	ServiceType      string          `json:"serviceType"`
	Amount           decimal.Decimal `json:"amount"`
	CalculatedAmount decimal.Decimal `json:"calculatedAmount"`
	Date             time.Time       `json:"date"`
	Status           Status          `json:"status"`
	StripeChargeID   string          `json:"stripeChargeId,omitempty"`
	GHLEventID       string          `json:"ghlEventId,omitempty"`
}

// EffectiveServiceType is the grouping key used by summaries.
func (r Record) EffectiveServiceType() string {
	if strings.TrimSpace(r.ServiceType) == "" {
		return DefaultServiceType
	}
	return r.ServiceType
}

// DefaultServiceType is used when a source carries no service description.
const DefaultServiceType = "Consultation"

type SourceState string

const (
	SourceStateOK           SourceState = "ok"
	SourceStateFailed       SourceState = "failed"
	SourceStateUnconfigured SourceState = "unconfigured"
)

// SourceResult is what an adapter hands back. Adapters never return an
// error; a failure is an empty result with State set to failed.
type SourceResult struct {
	Source    Source
	Records   []Record
	State     SourceState
	Truncated bool
}

func Failed(source Source) SourceResult {
	return SourceResult{Source: source, Records: []Record{}, State: SourceStateFailed}
}

func Unconfigured(source Source) SourceResult {
	return SourceResult{Source: source, Records: []Record{}, State: SourceStateUnconfigured}
}
