package pdf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestGenerateInvoiceProducesPDF(t *testing.T) {
	out, err := New().GenerateInvoice(context.Background(), InvoiceData{
		Practitioner:  "Dr Jane Roe",
		InvoiceNumber: "INV-202403-DR-JANE-ROE",
		IssueDate:     "Apr 1, 2024",
		ServicePeriod: "March 2024",
		ApprovedCount: 2,
		Items: []InvoiceItem{
			{Description: "Initial Consultation", Qty: 1, UnitPrice: "$100.00", Amount: "$100.00"},
			{Description: "Pathology Review", Qty: 1, UnitPrice: "$85.00", Amount: "$85.00"},
		},
		Total: "$185.00",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	raw, err := io.ReadAll(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %q", raw[:min(len(raw), 8)])
	}
}

func TestGenerateInvoiceRequiresLines(t *testing.T) {
	_, err := New().GenerateInvoice(context.Background(), InvoiceData{})
	if !errors.Is(err, ErrNoLines) {
		t.Fatalf("expected ErrNoLines, got %v", err)
	}
}
