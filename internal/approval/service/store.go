package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	approvaldomain "github.com/smallbiznis/consultinvoice/internal/approval/domain"
	consultation "github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	"go.uber.org/zap"
)

// Store keeps every decision in one JSON object stored under
// approvaldomain.EntryName.
type Store struct {
	kv  approvaldomain.KV
	log *zap.Logger
	mu  sync.Mutex
}

func New(kv approvaldomain.KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log.Named("approval.store")}
}

var _ approvaldomain.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, period consultation.Period, id string) (consultation.Status, bool, error) {
	decisions, err := s.load(ctx)
	if err != nil {
		return "", false, err
	}
	status, ok := decisions[approvaldomain.Key(period, id)]
	if !ok || !status.Valid() {
		return "", false, nil
	}
	return status, true, nil
}

func (s *Store) Set(ctx context.Context, period consultation.Period, id string, status consultation.Status) error {
	return s.BulkSet(ctx, period, []string{id}, status)
}

func (s *Store) BulkSet(ctx context.Context, period consultation.Period, ids []string, status consultation.Status) error {
	if !status.Valid() {
		return consultation.ErrInvalidStatus
	}
	if err := period.Validate(); err != nil {
		return err
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return approvaldomain.ErrEmptyRecordID
		}
	}
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	decisions, err := s.load(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		decisions[approvaldomain.Key(period, id)] = status
	}

	raw, err := json.Marshal(decisions)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, approvaldomain.EntryName, string(raw))
}

// Overlay returns copies of records with stored decisions applied.
func (s *Store) Overlay(ctx context.Context, period consultation.Period, records []consultation.Record) ([]consultation.Record, error) {
	decisions, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]consultation.Record, len(records))
	for i, r := range records {
		if status, ok := decisions[approvaldomain.Key(period, r.ID)]; ok && status.Valid() {
			r.Status = status
		}
		out[i] = r
	}
	return out, nil
}

// load never fails on bad content: unreadable text is an empty map.
func (s *Store) load(ctx context.Context) (map[string]consultation.Status, error) {
	raw, ok, err := s.kv.Get(ctx, approvaldomain.EntryName)
	if err != nil {
		return nil, err
	}
	decisions := map[string]consultation.Status{}
	if !ok || strings.TrimSpace(raw) == "" {
		return decisions, nil
	}
	if err := json.Unmarshal([]byte(raw), &decisions); err != nil {
		s.log.Warn("stored approvals unreadable, starting empty", zap.Error(err))
		return map[string]consultation.Status{}, nil
	}
	return decisions, nil
}
