package helpers

import (
	"context"
	"time"
)

func IsContextDone(ctx context.Context) bool {
	if ctx == nil {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
	}
	return false
}

// ParseISODate parses a YYYY-MM-DD date as a UTC calendar day.
func ParseISODate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func FormatISODate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DateUTC truncates t to its UTC calendar day.
func DateUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BusinessDays counts Mon-Fri calendar days in [start, end] inclusive,
// on UTC dates, so the caller's timezone never shifts the count.
// Holidays are not considered. Returns 0 when end is before start.
func BusinessDays(start, end time.Time) int {
	from := DateUTC(start)
	to := DateUTC(end)
	if to.Before(from) {
		return 0
	}
	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

// SpanDays is the inclusive calendar-day length of [start, end].
func SpanDays(start, end time.Time) int {
	from := DateUTC(start)
	to := DateUTC(end)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}
