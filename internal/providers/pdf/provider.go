package pdf

import (
	"context"
	"io"
)

// Provider renders a practitioner invoice document.
type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error)
}
