package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Summarize(ctx context.Context, req SummaryRequest) (Summary, error)
}

// SourceFetcher pulls one month of records from an upstream system.
type SourceFetcher interface {
	Source() Source
	Fetch(ctx context.Context, window Window) SourceResult
}

// PeriodCache keeps recent merged results for a month.
type PeriodCache interface {
	Get(ctx context.Context, period Period) (ListResponse, bool)
	Set(ctx context.Context, period Period, resp ListResponse)
}

type ListRequest struct {
	Period Period
}

type PeriodView struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type SourceCounts struct {
	Stripe      int `json:"stripe"`
	GoHighLevel int `json:"gohighlevel"`
	Total       int `json:"total"`
}

type SourceStates struct {
	Stripe      SourceState `json:"stripe"`
	GoHighLevel SourceState `json:"gohighlevel"`
}

// Degraded reports whether any source failed outright.
func (s SourceStates) Degraded() bool {
	return s.Stripe == SourceStateFailed || s.GoHighLevel == SourceStateFailed
}

type ListResponse struct {
	Period        PeriodView   `json:"period"`
	Consultations []Record     `json:"consultations"`
	Sources       SourceCounts `json:"sources"`
	SourceStates  SourceStates `json:"sourceStates"`
	Truncated     bool         `json:"truncated,omitempty"`
}

type SummaryRequest struct {
	Consultations []Record
}

type ServiceBreakdown struct {
	ServiceType string          `json:"serviceType"`
	Count       int             `json:"count"`
	Rate        decimal.Decimal `json:"rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Summary struct {
	ServiceBreakdown []ServiceBreakdown         `json:"serviceBreakdown"`
	GrandTotal       decimal.Decimal            `json:"grandTotal"`
	ApprovedCount    int                        `json:"approvedCount"`
	RejectedCount    int                        `json:"rejectedCount"`
	PendingCount     int                        `json:"pendingCount"`
	Rates            map[string]decimal.Decimal `json:"rates"`
}

var (
	ErrInvalidPeriod  = errors.New("invalid_period")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrRecordNotFound = errors.New("record_not_found")
)
