package gohighlevel

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/consultinvoice/internal/cache"
	"github.com/smallbiznis/consultinvoice/internal/config"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	obslogger "github.com/smallbiznis/consultinvoice/internal/observability/logger"
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	contactTTL      = 10 * time.Minute
	calendarFanOut  = 4
	statusConfirmed = "confirmed"
	statusShowed    = "showed"
	unknownPatient  = "Unknown"
)

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Rates ratingdomain.Service
}

// Adapter reads booked appointments from Go High Level calendars.
type Adapter struct {
	client   *ghlClient
	rates    ratingdomain.Service
	contacts *cache.TTLCache[string, contact]
	log      *zap.Logger
}

func New(p Params) *Adapter {
	gh := p.Cfg.GoHighLevel
	return &Adapter{
		client:   newGHLClient(gh.APIKey, gh.LocationID, gh.BaseURL, gh.APIVersion),
		rates:    p.Rates,
		contacts: cache.NewTTLCache[string, contact](),
		log:      p.Log.Named("gohighlevel.adapter"),
	}
}

func (a *Adapter) Source() domain.Source {
	return domain.SourceGoHighLevel
}

func (a *Adapter) Fetch(ctx context.Context, window domain.Window) domain.SourceResult {
	if a.client.apiKey == "" || a.client.locationID == "" {
		return domain.Unconfigured(domain.SourceGoHighLevel)
	}

	log := obslogger.WithContext(ctx, a.log)
	records, err := a.fetch(ctx, window)
	if err != nil {
		log.Error("gohighlevel appointment listing failed", zap.Error(err))
		return domain.Failed(domain.SourceGoHighLevel)
	}

	return domain.SourceResult{
		Source:  domain.SourceGoHighLevel,
		Records: records,
		State:   domain.SourceStateOK,
	}
}

func (a *Adapter) fetch(ctx context.Context, window domain.Window) ([]domain.Record, error) {
	calendars, err := a.client.listCalendars(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		events []event
	)
	names := make(map[string]string, len(calendars))
	for _, cal := range calendars {
		names[cal.ID] = cal.Name
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(calendarFanOut)
	for _, cal := range calendars {
		g.Go(func() error {
			list, err := a.client.listEvents(gctx, cal.ID, window.Start, window.End)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, ev := range list {
				if ev.CalendarID == "" {
					ev.CalendarID = cal.ID
				}
				events = append(events, ev)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Calendar fan-out completes in any order.
	sort.SliceStable(events, func(i, j int) bool { return events[i].ID < events[j].ID })

	records := make([]domain.Record, 0, len(events))
	for _, ev := range events {
		if !billable(ev.AppointmentStatus) {
			continue
		}
		start, err := time.Parse(time.RFC3339, strings.TrimSpace(ev.StartTime))
		if err != nil {
			return nil, fmt.Errorf("event %s: start time: %w", ev.ID, err)
		}
		who := a.lookupContact(ctx, ev.ContactID)

		serviceType := firstNonEmpty(names[ev.CalendarID], ev.Title, domain.DefaultServiceType)
		records = append(records, domain.Record{
			ID:               "ghl_" + ev.ID,
			Source:           domain.SourceGoHighLevel,
			PatientName:      firstNonEmpty(who.displayName(), unknownPatient),
			PatientEmail:     strings.TrimSpace(who.Email),
			ServiceType:      serviceType,
			Amount:           decimal.Zero,
			CalculatedAmount: a.rates.Resolve(serviceType),
			Date:             start.UTC(),
			Status:           domain.StatusPending,
			GHLEventID:       ev.ID,
		})
	}
	return records, nil
}

// lookupContact never fails the fetch: a contact that cannot be read leaves
// the appointment as an unknown patient with no email.
func (a *Adapter) lookupContact(ctx context.Context, id string) contact {
	id = strings.TrimSpace(id)
	if id == "" {
		return contact{}
	}
	if c, ok := a.contacts.Get(id); ok {
		return c
	}
	c, err := a.client.getContact(ctx, id)
	if err != nil {
		obslogger.WithContext(ctx, a.log).Warn("gohighlevel contact lookup failed",
			zap.String("contact_id", id), zap.Error(err))
		return contact{}
	}
	a.contacts.Set(id, c, contactTTL)
	return c
}

func billable(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case statusConfirmed, statusShowed:
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
