package format

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
)

const csvDateLayout = "Jan 2, 2006"

var csvHeader = []string{"Date", "Patient Name", "Service Type", "Source", "Amount"}

// WriteCSV writes the approved records of a month, one row each, followed by
// a blank row and a totals row. Every field is quoted.
func WriteCSV(w io.Writer, records []domain.Record, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	bw := bufio.NewWriter(w)
	lines := make([][]string, 0, len(records)+3)
	lines = append(lines, csvHeader)

	total := decimal.Zero
	for _, r := range records {
		if r.Status != domain.StatusApproved {
			continue
		}
		total = total.Add(r.CalculatedAmount)
		lines = append(lines, []string{
			r.Date.In(loc).Format(csvDateLayout),
			r.PatientName,
			r.ServiceType,
			string(r.Source),
			r.CalculatedAmount.StringFixed(2),
		})
	}
	lines = append(lines, nil)
	lines = append(lines, []string{"", "", "", "Total:", total.StringFixed(2)})

	for i, line := range lines {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		for j, cell := range line {
			if j > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(quote(cell)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}
