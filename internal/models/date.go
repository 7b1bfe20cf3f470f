package models

import "time"

const DateLayout = "2006-01-02"

// Day truncates t to its calendar day at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Today() time.Time {
	return Day(time.Now())
}

// ParseDay parses a "2006-01-02" string into a UTC day.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
