package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/smallbiznis/consultinvoice/internal/invoice/format"
	"github.com/smallbiznis/consultinvoice/internal/providers/pdf"
)

var (
	ErrDemoData      = errors.New("demo_data_export_refused")
	ErrUnknownFormat = errors.New("unknown_export_format")
)

type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", ErrUnknownFormat
	}
}

// Exporter writes the approved records of a session as a file.
type Exporter struct {
	PDF          pdf.Provider
	Practitioner string
	AllowDemo    bool
	Now          func() time.Time
}

// Filename is the default output name for a session and format.
func (e Exporter) Filename(s *Session, f ExportFormat) string {
	if f == FormatPDF {
		return format.PDFFilename(e.Practitioner, s.Period())
	}
	return format.CSVFilename(s.Period())
}

func (e Exporter) Export(ctx context.Context, w io.Writer, s *Session, f ExportFormat) error {
	if s.Demo() && !e.AllowDemo {
		return ErrDemoData
	}
	switch f {
	case FormatCSV:
		return format.WriteCSV(w, s.Records(), s.Location())
	case FormatPDF:
		return e.exportPDF(ctx, w, s)
	default:
		return ErrUnknownFormat
	}
}

func (e Exporter) exportPDF(ctx context.Context, w io.Writer, s *Session) error {
	if e.PDF == nil {
		return fmt.Errorf("pdf provider not configured")
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	summary, _ := s.RemoteSummary(ctx)
	number, err := format.FormatInvoiceNumber(format.DefaultInvoiceNumberTemplate, s.Period(), e.Practitioner)
	if err != nil {
		return err
	}

	practitioner := strings.TrimSpace(e.Practitioner)
	if practitioner == "" {
		practitioner = "Practitioner"
	}
	data := pdf.InvoiceData{
		Practitioner:  practitioner,
		InvoiceNumber: number,
		IssueDate:     now().In(s.Location()).Format(rowDateLayout),
		ServicePeriod: s.Period().String(),
		ApprovedCount: summary.ApprovedCount,
		Total:         format.Money(summary.GrandTotal),
	}
	for _, b := range summary.ServiceBreakdown {
		data.Items = append(data.Items, pdf.InvoiceItem{
			Description: b.ServiceType,
			Qty:         b.Count,
			UnitPrice:   format.Money(b.Rate),
			Amount:      format.Money(b.Subtotal),
		})
	}

	doc, err := e.PDF.GenerateInvoice(ctx, data)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, doc)
	return err
}
