package tracing

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/consultinvoice/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// PeriodKey is the gin context key handlers use to tag the billing month
// a request resolved to.
const PeriodKey = "period"

// GinMiddleware opens a server span per request. Upstream trace context is
// honoured so reviewer CLI calls appear under the same trace.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("consultinvoice/http")
	propagator := otel.GetTextMapPropagator()

	return func(c *gin.Context) {
		req := c.Request
		ctx := propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		ctx, span := tracer.Start(ctx, req.Method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		started := time.Now()
		c.Request = req.WithContext(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		span.SetName(req.Method + " " + route)

		status := c.Writer.Status()
		attrs := []attribute.KeyValue{
			attribute.String("http.method", req.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.Int64("http.server_duration_ms", time.Since(started).Milliseconds()),
		}
		if id := obscontext.RequestIDFromContext(c.Request.Context()); id != "" {
			attrs = append(attrs, attribute.String("request_id", id))
		}
		if cid := obscontext.CorrelationIDFromContext(c.Request.Context()); cid != "" {
			attrs = append(attrs, attribute.String("correlation_id", cid))
		}
		if period := c.GetString(PeriodKey); period != "" {
			attrs = append(attrs, attribute.String("consultation.period", period))
		}
		span.SetAttributes(SafeAttributes(attrs...)...)

		if status >= http.StatusInternalServerError {
			if last := c.Errors.Last(); last != nil {
				span.RecordError(SafeError(last.Err))
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
