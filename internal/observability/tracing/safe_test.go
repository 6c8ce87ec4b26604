package tracing

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsPatientFields(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("patient.email", "jane@example.com"),
		attribute.String("http.route", "/consultations"),
		attribute.Int("http.status_code", 200),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "patient.email" {
			t.Fatalf("patient.email should be dropped")
		}
	}
}

func TestSafeErrorMasksEmails(t *testing.T) {
	err := SafeError(errors.New("contact jane.doe@example.com not found"))
	if err.Error() != "contact [email] not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if SafeError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
