package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	obslogger "github.com/smallbiznis/consultinvoice/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Open connects to a local SQLite database with tracing and zap logging
// attached.
func Open(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	dsn, err := dsnFor(cfg.Path)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: obslogger.NewGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	if err := conn.Use(otelgorm.NewPlugin(otelgorm.WithDBName("approvals"))); err != nil {
		return nil, fmt.Errorf("attach tracing: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers anyway.
	maxOpen := cfg.MaxOpenConn
	if maxOpen <= 0 {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return conn, nil
}

func dsnFor(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "file::memory:", nil
	}
	if strings.HasPrefix(path, "file:") {
		return path, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", fmt.Errorf("create store directory: %w", err)
		}
	}
	return path, nil
}
