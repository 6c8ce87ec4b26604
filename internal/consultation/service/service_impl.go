package service

import (
	"context"
	"time"

	"github.com/smallbiznis/consultinvoice/internal/config"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	obsmetrics "github.com/smallbiznis/consultinvoice/internal/observability/metrics"
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Params struct {
	fx.In

	Log           *zap.Logger
	Cfg           config.Config
	Rates         ratingdomain.Service
	Sources       []domain.SourceFetcher   `group:"sources"`
	Cache         domain.PeriodCache       `optional:"true"`
	Metrics       *obsmetrics.Metrics       `optional:"true"`
	SourceMetrics *obsmetrics.SourceMetrics `optional:"true"`
}

type Service struct {
	log           *zap.Logger
	loc           *time.Location
	rates         ratingdomain.Service
	sources       []domain.SourceFetcher
	cache         domain.PeriodCache
	metrics       *obsmetrics.Metrics
	sourceMetrics *obsmetrics.SourceMetrics
	tracer        trace.Tracer
}

func New(p Params) domain.Service {
	return &Service{
		log:           p.Log.Named("consultation.service"),
		loc:           p.Cfg.Location(),
		rates:         p.Rates,
		sources:       p.Sources,
		cache:         p.Cache,
		metrics:       p.Metrics,
		sourceMetrics: p.SourceMetrics,
		tracer:        otel.Tracer("consultinvoice/consultation"),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	if err := req.Period.Validate(); err != nil {
		return domain.ListResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "consultation.List", trace.WithAttributes(
		attribute.Int("period.year", req.Period.Year),
		attribute.Int("period.month", int(req.Period.Month)),
	))
	defer span.End()

	if s.cache != nil {
		if resp, ok := s.cache.Get(ctx, req.Period); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return resp, nil
		}
	}

	window := req.Period.Window(s.loc)
	results := s.fetchAll(ctx, window)

	paid := results[domain.SourceStripe]
	events := results[domain.SourceGoHighLevel]

	resp := domain.ListResponse{
		Period: domain.PeriodView{
			Year:      req.Period.Year,
			Month:     int(req.Period.Month),
			StartDate: window.Start,
			EndDate:   window.End,
		},
		Consultations: Merge(paid.Records, events.Records),
		Sources: domain.SourceCounts{
			Stripe:      len(paid.Records),
			GoHighLevel: len(events.Records),
		},
		SourceStates: domain.SourceStates{
			Stripe:      paid.State,
			GoHighLevel: events.State,
		},
		Truncated: paid.Truncated || events.Truncated,
	}
	resp.Sources.Total = len(resp.Consultations)

	s.log.Info("consultations listed",
		zap.String("period", req.Period.Key()),
		zap.Int("stripe", resp.Sources.Stripe),
		zap.Int("gohighlevel", resp.Sources.GoHighLevel),
		zap.Int("total", resp.Sources.Total),
		zap.String("stripe_state", string(paid.State)),
		zap.String("gohighlevel_state", string(events.State)),
	)

	if s.cache != nil && !resp.SourceStates.Degraded() {
		s.cache.Set(ctx, req.Period, resp)
	}

	return resp, nil
}

func (s *Service) Summarize(ctx context.Context, req domain.SummaryRequest) (domain.Summary, error) {
	summary := Summarize(req.Consultations, s.rates.Table())
	s.metrics.RecordSummary(ctx, summary.ApprovedCount)
	return summary, nil
}

// fetchAll starts every adapter before waiting on any of them.
func (s *Service) fetchAll(ctx context.Context, window domain.Window) map[domain.Source]domain.SourceResult {
	out := make([]domain.SourceResult, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			out[i] = s.fetchOne(gctx, src, window)
			return nil
		})
	}
	_ = g.Wait()

	results := map[domain.Source]domain.SourceResult{
		domain.SourceStripe:      domain.Unconfigured(domain.SourceStripe),
		domain.SourceGoHighLevel: domain.Unconfigured(domain.SourceGoHighLevel),
	}
	for _, res := range out {
		if res.Records == nil {
			res.Records = []domain.Record{}
		}
		results[res.Source] = res
	}
	return results
}

func (s *Service) fetchOne(ctx context.Context, src domain.SourceFetcher, window domain.Window) domain.SourceResult {
	start := time.Now()
	res := src.Fetch(ctx, window)
	if res.Source == "" {
		res.Source = src.Source()
	}
	if res.State == "" {
		res.State = domain.SourceStateOK
	}

	s.metrics.RecordSourceFetch(ctx, string(res.Source), string(res.State))
	s.sourceMetrics.ObserveFetch(string(res.Source), string(res.State), time.Since(start), len(res.Records))
	if res.Truncated {
		s.log.Warn("source returned a truncated page", zap.String("source", string(res.Source)))
	}
	return res
}
