package domain

import (
	"errors"
	"time"
)

const periodLayout = "2006-01"

var ErrInvalidPeriod = errors.New("invalid_period")

// PeriodOf returns the YYYY-MM calendar month containing the instant.
func PeriodOf(t time.Time) string {
	return t.UTC().Format(periodLayout)
}

// ParsePeriod validates a YYYY-MM period string.
func ParsePeriod(value string) (string, error) {
	t, err := time.Parse(periodLayout, value)
	if err != nil {
		return "", ErrInvalidPeriod
	}
	return t.Format(periodLayout), nil
}

// PeriodBounds returns the half-open [start, end) UTC interval covered
// by a period.
func PeriodBounds(period string) (time.Time, time.Time, error) {
	start, err := time.Parse(periodLayout, period)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	start = start.UTC()
	return start, start.AddDate(0, 1, 0), nil
}
