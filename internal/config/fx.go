package config

import (
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewRatesHolder,
		provideTableSource,
	),
)

func provideTableSource(h *RatesHolder) ratingdomain.TableSource {
	return h
}
