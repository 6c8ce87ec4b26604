package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
)

var (
	unresolvedRe = regexp.MustCompile(`\{[A-Z0-9]+\}`)
)

const DefaultInvoiceNumberTemplate = "INV-{YYYY}{MM}-{PRACTITIONER}"

// FormatInvoiceNumber renders an invoice number for a billing month.
// Supported tokens: {YYYY}, {YY}, {MM}, {M}, {PRACTITIONER}.
//
// The result only depends on its inputs, so the same month always gets the
// same number.
func FormatInvoiceNumber(template string, period domain.Period, practitioner string) (string, error) {
	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if err := period.Validate(); err != nil {
		return "", err
	}

	code := strings.ToUpper(slug.Make(practitioner))
	if code == "" {
		code = "PRACTICE"
	}

	out := template
	out = strings.ReplaceAll(out, "{YYYY}", fmt.Sprintf("%04d", period.Year))
	out = strings.ReplaceAll(out, "{YY}", fmt.Sprintf("%02d", period.Year%100))
	out = strings.ReplaceAll(out, "{MM}", fmt.Sprintf("%02d", int(period.Month)))
	out = strings.ReplaceAll(out, "{M}", fmt.Sprintf("%d", int(period.Month)))
	out = strings.ReplaceAll(out, "{PRACTITIONER}", code)

	if m := unresolvedRe.FindString(out); m != "" {
		return "", fmt.Errorf("unresolved token %s in invoice format: %s", m, out)
	}

	return out, nil
}

// CSVFilename is the download name for a month's approved consultations.
func CSVFilename(period domain.Period) string {
	return fmt.Sprintf("invoice_%04d_%02d.csv", period.Year, int(period.Month))
}

// PDFFilename names a practitioner invoice, e.g. invoice_dr-jane-roe_2024_03.pdf.
func PDFFilename(practitioner string, period domain.Period) string {
	name := slug.Make(practitioner)
	if name == "" {
		return fmt.Sprintf("invoice_%04d_%02d.pdf", period.Year, int(period.Month))
	}
	return fmt.Sprintf("invoice_%s_%04d_%02d.pdf", name, period.Year, int(period.Month))
}
