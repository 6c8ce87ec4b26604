package consultation

import (
	"github.com/smallbiznis/consultinvoice/internal/consultation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("consultation.service",
	fx.Provide(service.New),
)
