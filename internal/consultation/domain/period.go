package domain

import (
	"fmt"
	"time"
)

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

func CurrentPeriod(now time.Time, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return Period{Year: local.Year(), Month: local.Month()}
}

func (p Period) Validate() error {
	if p.Year < 2000 || p.Year > 9999 {
		return ErrInvalidPeriod
	}
	if p.Month < time.January || p.Month > time.December {
		return ErrInvalidPeriod
	}
	return nil
}

// Window spans the first day at 00:00:00 to the last day at 23:59:59.
func (p Period) Window(loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
	lastDay := start.AddDate(0, 1, -1)
	end := time.Date(lastDay.Year(), lastDay.Month(), lastDay.Day(), 23, 59, 59, 0, loc)
	return Window{Start: start, End: end}
}

// Key is the approval partition prefix, e.g. "2024-3".
func (p Period) Key() string {
	return fmt.Sprintf("%d-%d", p.Year, int(p.Month))
}

func (p Period) Prev() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}
