package review

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	"github.com/smallbiznis/consultinvoice/internal/invoice/format"
)

const rowDateLayout = "Jan 2, 2006"

// Render prints a view as plain-text tables.
func Render(w io.Writer, v View, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	p := &printer{w: w}

	p.linef("Consultations for %s", v.Period)
	if v.Demo {
		p.linef("!! API unreachable: showing DEMO data. Decisions are saved but exports are disabled.")
	}
	if v.SourceStates.Degraded() {
		p.linef("!! Source problem: stripe=%s gohighlevel=%s", v.SourceStates.Stripe, v.SourceStates.GoHighLevel)
	}
	if v.Truncated {
		p.linef("!! Stripe returned more charges than one page; the list is incomplete.")
	}
	p.linef("")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p.tabf(tw, "Invoice total\tApproved\tPending\tRejected\n")
	p.tabf(tw, "%s\t%d\t%d\t%d\n", format.Money(v.Summary.GrandTotal), v.Counts.Approved, v.Counts.Pending, v.Counts.Rejected)
	p.flush(tw)
	p.linef("")

	p.breakdown(v.Summary)
	p.linef("")

	if len(v.Rows) == 0 {
		p.linef("No consultations match the current filters")
		return p.err
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p.tabf(tw, "ID\tDATE\tPATIENT\tSERVICE\tSOURCE\tAMOUNT\tSTATUS\n")
	for _, r := range v.Rows {
		p.tabf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Date.In(loc).Format(rowDateLayout),
			r.PatientName,
			r.EffectiveServiceType(),
			sourceLabel(r.Source),
			format.Money(r.CalculatedAmount),
			r.Status,
		)
	}
	p.flush(tw)
	return p.err
}

// RenderSummary prints only the service breakdown of a summary.
func RenderSummary(w io.Writer, summary domain.Summary) error {
	p := &printer{w: w}
	p.breakdown(summary)
	p.linef("Approved %d, pending %d, rejected %d", summary.ApprovedCount, summary.PendingCount, summary.RejectedCount)
	return p.err
}

func (p *printer) breakdown(summary domain.Summary) {
	if len(summary.ServiceBreakdown) == 0 {
		p.linef("No approved consultations yet")
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	p.tabf(tw, "SERVICE\tRATE\tCOUNT\tSUBTOTAL\n")
	for _, b := range summary.ServiceBreakdown {
		p.tabf(tw, "%s\t%s\t%d\t%s\n", b.ServiceType, format.Money(b.Rate), b.Count, format.Money(b.Subtotal))
	}
	p.tabf(tw, "TOTAL\t\t%d\t%s\n", summary.ApprovedCount, format.Money(summary.GrandTotal))
	p.flush(tw)
}

func sourceLabel(s domain.Source) string {
	switch s {
	case domain.SourceStripe:
		return "Stripe"
	case domain.SourceGoHighLevel:
		return "GoHighLevel"
	default:
		return string(s)
	}
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) linef(f string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, f+"\n", args...)
}

func (p *printer) tabf(tw *tabwriter.Writer, f string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(tw, f, args...)
}

func (p *printer) flush(tw *tabwriter.Writer) {
	if p.err != nil {
		return
	}
	p.err = tw.Flush()
}
