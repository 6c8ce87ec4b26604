package repository

import (
	"context"
	"errors"
	"time"

	approvaldomain "github.com/smallbiznis/consultinvoice/internal/approval/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is one row of the kv_entries table.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;type:text"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (KVEntry) TableName() string { return "kv_entries" }

type GormKV struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormKV migrates kv_entries and returns a KV over it.
func NewGormKV(db *gorm.DB) (*GormKV, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, err
	}
	return &GormKV{db: db, now: time.Now}, nil
}

var _ approvaldomain.KV = (*GormKV)(nil)

func (r *GormKV) Get(ctx context.Context, key string) (string, bool, error) {
	var entry KVEntry
	err := r.db.WithContext(ctx).Where(`"key" = ?`, key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (r *GormKV) Set(ctx context.Context, key, value string) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: r.now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}
