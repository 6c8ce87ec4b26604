package domain

import (
	"context"
	"errors"

	consultation "github.com/smallbiznis/consultinvoice/internal/consultation/domain"
)

// EntryName is the single KV entry holding every approval decision.
const EntryName = "consultant_invoice_approvals"

// Store persists reviewer decisions per month and record id.
type Store interface {
	Get(ctx context.Context, period consultation.Period, id string) (consultation.Status, bool, error)
	Set(ctx context.Context, period consultation.Period, id string, status consultation.Status) error
	BulkSet(ctx context.Context, period consultation.Period, ids []string, status consultation.Status) error
	Overlay(ctx context.Context, period consultation.Period, records []consultation.Record) ([]consultation.Record, error)
}

// KV is a string key-value backend. Get reports false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

var (
	ErrEmptyRecordID = errors.New("empty_record_id")
)

// Key composes the stored key, e.g. "2024-3_stripe_ch_1".
func Key(period consultation.Period, id string) string {
	return period.Key() + "_" + id
}
