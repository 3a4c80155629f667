package utils

import (
	"strings"
	"time"
)

const (
	ISOSeconds = "2006-01-02T15:04:05Z"
	ISOMillis  = "2006-01-02T15:04:05.000Z"
	DateLayout = "2006-01-02"
)

var unitSeconds = map[string]int64{
	"mins":   60,
	"hours":  3600,
	"days":   24 * 3600,
	"weeks":  7 * 24 * 3600,
	"months": 30 * 24 * 3600,
}

// ConvertToSeconds canonicalises a provider duration. Unknown units and
// non-positive values yield 0.
func ConvertToSeconds(value float64, unit string) int64 {
	if value <= 0 {
		return 0
	}
	rate, ok := unitSeconds[strings.ToLower(unit)]
	if !ok {
		return 0
	}
	return int64(value * float64(rate))
}

// FormatISOSeconds renders t in UTC without a fractional part.
func FormatISOSeconds(t time.Time) string {
	return t.UTC().Format(ISOSeconds)
}

// FormatISOMillis renders t in UTC with a fixed three-digit millisecond part.
func FormatISOMillis(t time.Time) string {
	return t.UTC().Format(ISOMillis)
}

// ParseTimestamp accepts RFC 3339 with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// LastPathSegment returns the trailing segment of a provider resource URI.
func LastPathSegment(uri string) string {
	uri = strings.TrimRight(uri, "/")
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// NextBusinessDays returns the next n weekdays starting at from's UTC date.
func NextBusinessDays(from time.Time, n int) []time.Time {
	day := time.Date(from.UTC().Year(), from.UTC().Month(), from.UTC().Day(), 0, 0, 0, 0, time.UTC)
	days := make([]time.Time, 0, n)
	for len(days) < n {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	return days
}
