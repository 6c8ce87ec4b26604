package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// TableSource yields the current rate table.
type TableSource interface {
	Get() Table
}

type Service interface {
	Table() Table
	Resolve(serviceType string) decimal.Decimal
}

var (
	ErrEmptyTable         = errors.New("empty_rate_table")
	ErrInvalidRate        = errors.New("invalid_rate")
	ErrInvalidDefaultRate = errors.New("invalid_default_rate")
	ErrInvalidServiceName = errors.New("invalid_service_name")
)
