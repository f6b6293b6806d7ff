package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are the ISO-8601 calendar-date shapes accepted for due
// dates and the dueBefore filter. Fractional seconds are accepted after any
// seconds field. Layouts without a zone yield UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04Z07",
	"2006-01-02T15:04",
	"2006-01-02T15Z07:00",
	"2006-01-02T15Z07",
	"2006-01-02T15",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"20060102T150405Z0700",
	"20060102T150405",
	"20060102T1504",
	"20060102",
}

var errBadTimestamp = errors.New("invalid date format, expected ISO 8601")

// ParseTimestamp parses an ISO-8601 date or date-time.
// A date without a time is midnight of that day; a year-month is the first
// of the month. Ordinal (2025-152) and week (2025-W23-1) dates are rewritten
// to calendar dates before parsing, so they take the same time suffixes.
func ParseTimestamp(s string) (time.Time, error) {
	if t, ok := parseLayouts(s); ok {
		return t, nil
	}

	date, rest := s, ""
	if i := strings.IndexAny(s, "T "); i >= 0 {
		date, rest = s[:i], s[i:]
	}
	if cal, ok := calendarDate(date); ok {
		if t, ok := parseLayouts(cal + rest); ok {
			return t, nil
		}
	}
	return time.Time{}, errBadTimestamp
}

func parseLayouts(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// calendarDate converts an ordinal or ISO week date to YYYY-MM-DD.
func calendarDate(date string) (string, bool) {
	for _, layout := range []string{"2006-002", "2006002"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format(time.DateOnly), true
		}
	}

	compact := strings.ReplaceAll(date, "-", "")
	if (len(compact) != 7 && len(compact) != 8) || compact[4] != 'W' {
		return "", false
	}
	year, err := strconv.Atoi(compact[:4])
	if err != nil {
		return "", false
	}
	week, err := strconv.Atoi(compact[5:7])
	if err != nil || week < 1 || week > 53 {
		return "", false
	}
	day := 1
	if len(compact) == 8 {
		if day, err = strconv.Atoi(compact[7:]); err != nil || day < 1 || day > 7 {
			return "", false
		}
	}

	// Week 1 is the week containing January 4th; weeks start on Monday.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))
	t := monday.AddDate(0, 0, (week-1)*7+day-1)
	if y, w := t.ISOWeek(); y != year || w != week {
		return "", false
	}
	return t.Format(time.DateOnly), true
}
