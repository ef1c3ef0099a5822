package news

import (
	"strconv"
	"strings"
	"time"
)

// DefaultSince is the lookback window used when none is given
const DefaultSince = "24h"

// ParseSince parses lookback windows like "24h", "2d" or "90m".
// The last character is the unit (m = minutes, d = days, anything else = hours).
// A missing, unparsable or non-positive amount falls back to 24.
func ParseSince(since string) time.Duration {
	since = strings.TrimSpace(since)

	unit := byte('h')
	valueText := "24"
	if since != "" {
		unit = strings.ToLower(since)[len(since)-1]
	}
	if len(since) > 1 {
		valueText = since[:len(since)-1]
	}

	value, err := strconv.Atoi(valueText)
	if err != nil || value <= 0 {
		value = 24
	}

	switch unit {
	case 'm':
		return time.Duration(value) * time.Minute
	case 'd':
		return time.Duration(value) * 24 * time.Hour
	default:
		return time.Duration(value) * time.Hour
	}
}

// SinceTime returns the start of the lookback window ending at now, in UTC
func SinceTime(now time.Time, since string) time.Time {
	return now.UTC().Add(-ParseSince(since))
}
