package todotxt

import (
	"time"

	"cloud.google.com/go/civil"
)

// dateLen is the length of a YYYY-MM-DD date.
const dateLen = 10

// parseDate reads a strict YYYY-MM-DD date.
func parseDate(s string) (civil.Date, bool) {
	if len(s) != dateLen {
		return civil.Date{}, false
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, false
	}
	return d, true
}

// dateHeader reads a date at the start of s that is followed by a space.
func dateHeader(s string) (civil.Date, bool) {
	if len(s) <= dateLen || s[dateLen] != ' ' {
		return civil.Date{}, false
	}
	return parseDate(s[:dateLen])
}

func optionalDate(s string) *civil.Date {
	d, ok := parseDate(s)
	if !ok {
		return nil
	}
	return &d
}

func copyDate(d *civil.Date) *civil.Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
