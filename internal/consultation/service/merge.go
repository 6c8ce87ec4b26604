package service

import (
	"sort"
	"strings"

	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
)

// Merge combines paid records with scheduled events.
//
// Every paid record is kept. An event is dropped when its email matches,
// case-insensitively, the email on any paid record; events without an
// email are always kept. This is an approximation: a second appointment
// for a patient who paid once in the month is also dropped.
//
// The result is ordered newest first; ties keep input order.
func Merge(paid, events []domain.Record) []domain.Record {
	paidEmails := make(map[string]struct{}, len(paid))
	for _, rec := range paid {
		if email := normalizeEmail(rec.PatientEmail); email != "" {
			paidEmails[email] = struct{}{}
		}
	}

	out := make([]domain.Record, 0, len(paid)+len(events))
	out = append(out, paid...)
	for _, rec := range events {
		email := normalizeEmail(rec.PatientEmail)
		if email != "" {
			if _, dup := paidEmails[email]; dup {
				continue
			}
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
