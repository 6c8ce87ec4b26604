package stripe

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/consultinvoice/internal/config"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	obslogger "github.com/smallbiznis/consultinvoice/internal/observability/logger"
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	statusSucceeded = "succeeded"
	unknownPatient  = "Unknown"
)

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Rates ratingdomain.Service
}

// Adapter turns succeeded Stripe charges into paid consultation records.
type Adapter struct {
	client           *stripeClient
	consultationOnly bool
	rates            ratingdomain.Service
	log              *zap.Logger
}

func New(p Params) *Adapter {
	return &Adapter{
		client:           newStripeClient(p.Cfg.Stripe.SecretKey, p.Cfg.Stripe.BaseURL),
		consultationOnly: p.Cfg.Stripe.ConsultationOnly,
		rates:            p.Rates,
		log:              p.Log.Named("stripe.adapter"),
	}
}

func (a *Adapter) Source() domain.Source {
	return domain.SourceStripe
}

func (a *Adapter) Fetch(ctx context.Context, window domain.Window) domain.SourceResult {
	if a.client.apiKey == "" {
		return domain.Unconfigured(domain.SourceStripe)
	}

	log := obslogger.WithContext(ctx, a.log)
	list, err := a.client.listCharges(ctx, window.Start, window.End)
	if err != nil {
		log.Error("stripe charge listing failed", zap.Error(err))
		return domain.Failed(domain.SourceStripe)
	}
	if list.HasMore {
		log.Warn("stripe returned more than one page, later charges are not included",
			zap.Int("page_size", len(list.Data)))
	}

	records := make([]domain.Record, 0, len(list.Data))
	for _, ch := range list.Data {
		if !a.accept(ch) {
			continue
		}
		records = append(records, a.toRecord(ch))
	}

	return domain.SourceResult{
		Source:    domain.SourceStripe,
		Records:   records,
		State:     domain.SourceStateOK,
		Truncated: list.HasMore,
	}
}

func (a *Adapter) accept(ch charge) bool {
	if ch.Status != statusSucceeded {
		return false
	}
	if a.consultationOnly && !strings.Contains(strings.ToLower(ch.Description), "consultation") {
		return false
	}
	return true
}

func (a *Adapter) toRecord(ch charge) domain.Record {
	serviceType := ch.Description
	if serviceType == "" {
		serviceType = domain.DefaultServiceType
	}

	return domain.Record{
		ID:               "stripe_" + ch.ID,
		Source:           domain.SourceStripe,
		PatientName:      firstNonEmpty(ch.Customer.Name, ch.BillingDetails.Name, unknownPatient),
		PatientEmail:     firstNonEmpty(ch.Customer.Email, ch.BillingDetails.Email),
		ServiceType:      serviceType,
		Amount:           decimal.New(ch.Amount, -2),
		CalculatedAmount: a.rates.Resolve(serviceType),
		Date:             time.Unix(ch.Created, 0).UTC(),
		Status:           domain.StatusPending,
		StripeChargeID:   ch.ID,
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
