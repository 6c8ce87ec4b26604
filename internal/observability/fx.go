package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/consultinvoice/internal/observability/logger"
	"github.com/smallbiznis/consultinvoice/internal/observability/metrics"
	"github.com/smallbiznis/consultinvoice/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		Config.Logger,
		Config.Tracing,
		Config.Metrics,
		logger.New,
		tracing.NewProvider,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
		metrics.NewSourceMetrics,
		func() prometheus.Registerer { return prometheus.DefaultRegisterer },
	),
	// Nothing else depends on the tracer provider; it only sets the globals.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
