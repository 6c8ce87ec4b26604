package review

import (
	"context"
	"time"

	approvaldomain "github.com/smallbiznis/consultinvoice/internal/approval/domain"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	consultationservice "github.com/smallbiznis/consultinvoice/internal/consultation/service"
	obslogger "github.com/smallbiznis/consultinvoice/internal/observability/logger"
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
	"go.uber.org/zap"
)

// API is the part of the HTTP API a session reads from.
type API interface {
	ListConsultations(ctx context.Context, period domain.Period) (domain.ListResponse, error)
	Summary(ctx context.Context, records []domain.Record) (domain.Summary, error)
	Rates(ctx context.Context) (ratingdomain.Table, error)
}

// Session holds one month of records under review. Every mutation goes
// through the approval store first; views are derived on demand.
type Session struct {
	api   API
	store approvaldomain.Store
	log   *zap.Logger
	loc   *time.Location

	period    domain.Period
	records   []domain.Record
	rates     ratingdomain.Table
	states    domain.SourceStates
	truncated bool
	demo      bool
}

func NewSession(api API, store approvaldomain.Store, loc *time.Location, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Session{
		api:   api,
		store: store,
		loc:   loc,
		log:   log.Named("review.session"),
		rates: ratingdomain.DefaultTable(),
	}
}

// Load fetches a month and overlays stored decisions. When the API is
// unreachable the session switches to the demo dataset and reports Demo.
func (s *Session) Load(ctx context.Context, period domain.Period) error {
	if err := period.Validate(); err != nil {
		return err
	}
	log := obslogger.WithContext(ctx, s.log)

	rates, err := s.api.Rates(ctx)
	if err != nil {
		log.Warn("rates unavailable, using built-in table", zap.Error(err))
		rates = ratingdomain.DefaultTable()
	}

	var (
		records   []domain.Record
		states    domain.SourceStates
		truncated bool
		demo      bool
	)
	resp, err := s.api.ListConsultations(ctx, period)
	if err != nil {
		log.Warn("consultations unavailable, showing demo data", zap.Error(err))
		records = DemoRecords(period, rates, s.loc)
		demo = true
	} else {
		records = resp.Consultations
		states = resp.SourceStates
		truncated = resp.Truncated
	}

	records, err = s.store.Overlay(ctx, period, records)
	if err != nil {
		return err
	}

	s.period = period
	s.records = records
	s.rates = rates
	s.states = states
	s.truncated = truncated
	s.demo = demo
	return nil
}

func (s *Session) Period() domain.Period { return s.period }

func (s *Session) Demo() bool { return s.demo }

func (s *Session) Rates() ratingdomain.Table { return s.rates.Clone() }

func (s *Session) Location() *time.Location { return s.loc }

// Records returns a copy of the loaded records.
func (s *Session) Records() []domain.Record {
	return append([]domain.Record(nil), s.records...)
}

// SetStatus records a decision for one record of the loaded month.
func (s *Session) SetStatus(ctx context.Context, id string, status domain.Status) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.ErrRecordNotFound
	}
	if err := s.store.Set(ctx, s.period, id, status); err != nil {
		return err
	}
	s.records[idx].Status = status
	return nil
}

func (s *Session) ApproveAllPending(ctx context.Context) (int, error) {
	return s.decidePending(ctx, domain.StatusApproved)
}

func (s *Session) RejectAllPending(ctx context.Context) (int, error) {
	return s.decidePending(ctx, domain.StatusRejected)
}

func (s *Session) decidePending(ctx context.Context, status domain.Status) (int, error) {
	var ids []string
	for _, r := range s.records {
		if r.Status == domain.StatusPending {
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.store.BulkSet(ctx, s.period, ids, status); err != nil {
		return 0, err
	}
	for i := range s.records {
		if s.records[i].Status == domain.StatusPending {
			s.records[i].Status = status
		}
	}
	return len(ids), nil
}

// RemoteSummary asks the API to total the current records and falls back to
// a local computation when it cannot.
func (s *Session) RemoteSummary(ctx context.Context) (domain.Summary, bool) {
	if !s.demo {
		summary, err := s.api.Summary(ctx, s.records)
		if err == nil {
			return summary, true
		}
		obslogger.WithContext(ctx, s.log).Warn("summary endpoint failed, computing locally", zap.Error(err))
	}
	return consultationservice.Summarize(s.records, s.rates), false
}

// Filter narrows the listed rows. Zero values mean all.
type Filter struct {
	Status domain.Status
	Source domain.Source
}

func (f Filter) match(r domain.Record) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Source != "" && r.Source != f.Source {
		return false
	}
	return true
}

type Counts struct {
	Total       int
	Pending     int
	Approved    int
	Rejected    int
	Stripe      int
	GoHighLevel int
}

type View struct {
	Period       domain.Period
	Demo         bool
	Truncated    bool
	SourceStates domain.SourceStates
	Rows         []domain.Record
	Counts       Counts
	Summary      domain.Summary
}

// View derives the screen state for the given filter. Counts and the summary
// always cover the whole month; only Rows is filtered.
func (s *Session) View(f Filter) View {
	v := View{
		Period:       s.period,
		Demo:         s.demo,
		Truncated:    s.truncated,
		SourceStates: s.states,
		Rows:         []domain.Record{},
		Summary:      consultationservice.Summarize(s.records, s.rates),
	}
	for _, r := range s.records {
		v.Counts.Total++
		switch r.Status {
		case domain.StatusApproved:
			v.Counts.Approved++
		case domain.StatusRejected:
			v.Counts.Rejected++
		default:
			v.Counts.Pending++
		}
		switch r.Source {
		case domain.SourceStripe:
			v.Counts.Stripe++
		case domain.SourceGoHighLevel:
			v.Counts.GoHighLevel++
		}
		if f.match(r) {
			v.Rows = append(v.Rows, r)
		}
	}
	return v
}

func (s *Session) indexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
