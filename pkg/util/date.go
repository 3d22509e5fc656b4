package util

import "time"

// DateLayout is the day format used in cache keys, documents and queries.
const DateLayout = "2006-01-02"

// Day returns the calendar day of t as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDay formats the calendar day of t.
func FormatDay(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// DayRange lists the days from..to inclusive, oldest first. It is empty when
// to is before from.
func DayRange(from, to time.Time) []string {
	var out []string
	for d, end := Day(from), Day(to); !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out
}
