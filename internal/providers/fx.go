package providers

import (
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	"github.com/smallbiznis/consultinvoice/internal/providers/gohighlevel"
	"github.com/smallbiznis/consultinvoice/internal/providers/stripe"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	fx.Provide(
		fx.Annotate(
			stripe.New,
			fx.As(new(domain.SourceFetcher)),
			fx.ResultTags(`group:"sources"`),
		),
		fx.Annotate(
			gohighlevel.New,
			fx.As(new(domain.SourceFetcher)),
			fx.ResultTags(`group:"sources"`),
		),
	),
)
