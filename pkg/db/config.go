package db

import "time"

type Config struct {
	// Path is a SQLite file path or DSN. Empty means a private in-memory
	// database.
	Path            string
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
}
