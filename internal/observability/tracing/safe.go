package tracing

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const maxAttributeLength = 256

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

var deniedAttributeKeys = map[attribute.Key]struct{}{
	"patient.name":  {},
	"patient.email": {},
	"authorization": {},
}

// SafeAttributes drops patient identifiers and masks emails in string values.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, denied := deniedAttributeKeys[attr.Key]; denied {
			continue
		}
		if attr.Value.Type() == attribute.STRING {
			out = append(out, attribute.String(string(attr.Key), scrub(attr.Value.AsString())))
			continue
		}
		out = append(out, attr)
	}
	return out
}

// SafeError returns an error whose message carries no email addresses.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(scrub(err.Error()))
}

func scrub(value string) string {
	value = emailPattern.ReplaceAllString(value, "[email]")
	if len(value) > maxAttributeLength {
		value = value[:maxAttributeLength]
	}
	return value
}

// StartClientSpan opens a client span for an outbound request and injects
// the trace context into its headers.
func StartClientSpan(req *http.Request, tracerName, operation string) (*http.Request, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(req.Context(), operation, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(SafeAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.host", req.URL.Host),
		attribute.String("http.path", req.URL.Path),
	)...)
	req = req.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, span
}

// EndClientSpan records the outcome of an outbound request.
func EndClientSpan(span trace.Span, status int, err error) {
	if status > 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err != nil {
		span.RecordError(SafeError(err))
		span.SetStatus(codes.Error, "request failed")
	} else if status >= http.StatusBadRequest {
		span.SetStatus(codes.Error, strings.ToLower(http.StatusText(status)))
	}
	span.End()
}
