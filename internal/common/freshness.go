package common

import (
	"fmt"
	"strings"
	"time"
)

// News cache windows
const (
	DefaultNewsCacheHours    = 24
	DefaultNewsRetentionDays = 30
	MinNewsLimit             = 1
	MaxNewsLimit             = 50
)

// FreshnessCutoff returns the oldest fetch time still served from cache.
func FreshnessCutoff(now time.Time, cacheHours int) time.Time {
	if cacheHours <= 0 {
		cacheHours = DefaultNewsCacheHours
	}
	return now.Add(-time.Duration(cacheHours) * time.Hour)
}

// RetentionCutoff returns the horizon past which cached news is purged.
func RetentionCutoff(now time.Time, retentionDays int) time.Time {
	if retentionDays <= 0 {
		retentionDays = DefaultNewsRetentionDays
	}
	return now.AddDate(0, 0, -retentionDays)
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in UTC. Blank input returns the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}
