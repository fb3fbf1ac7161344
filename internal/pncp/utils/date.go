package utils

import (
	"regexp"
	"time"
)

// CompactDateLayout is the YYYYMMDD layout the registry uses for query
// parameters and some response fields.
const CompactDateLayout = "20060102"

var compactDatePattern = regexp.MustCompile(`^[0-9]{8}$`)

// IsCompactDate reports whether s has the 8-digit shape. It does not check
// that the digits form a real calendar day; upstream rejects those.
func IsCompactDate(s string) bool {
	return compactDatePattern.MatchString(s)
}

func FormatCompactDate(t time.Time) string {
	return t.Format(CompactDateLayout)
}

func ParseCompactDate(s string) (time.Time, error) {
	return time.Parse(CompactDateLayout, s)
}

// timestampLayouts are tried in order. Zoneless layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
	"02/01/2006",
}

// ParseTimestamp parses the timestamp shapes seen in registry payloads.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
