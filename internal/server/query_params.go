package server

import (
	"strconv"
	"strings"
	"time"

	consultationdomain "github.com/smallbiznis/consultinvoice/internal/consultation/domain"
)

func parseOptionalInt(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parsePeriod reads year and month. Both must be present to select a month;
// otherwise the current month in the practice time zone is used. A value
// that is present but malformed is always rejected.
func parsePeriod(yearRaw, monthRaw string, now time.Time, loc *time.Location) (consultationdomain.Period, error) {
	year, err := parseOptionalInt(yearRaw)
	if err != nil {
		return consultationdomain.Period{}, ErrInvalidYear
	}
	month, err := parseOptionalInt(monthRaw)
	if err != nil {
		return consultationdomain.Period{}, ErrInvalidMonth
	}
	if month != nil && (*month < 1 || *month > 12) {
		return consultationdomain.Period{}, ErrInvalidMonth
	}
	if year != nil && (*year < 2000 || *year > 9999) {
		return consultationdomain.Period{}, ErrInvalidYear
	}

	if year == nil || month == nil {
		return consultationdomain.CurrentPeriod(now, loc), nil
	}
	return consultationdomain.Period{Year: *year, Month: time.Month(*month)}, nil
}
