package utils

import (
	"strings"
	"time"
)

// Display layouts.
const (
	GameDateLayout = "02.01.2006"
	DateTimeLayout = "02.01.2006 15:04"
)

// LoadLocation resolves a timezone name. Empty, "Local" and "local" mean the
// system zone.
func LoadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local", "local":
		return time.Local, nil
	default:
		return time.LoadLocation(strings.TrimSpace(name))
	}
}

// FormatGameDate formats the day a game was played in loc.
func FormatGameDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(GameDateLayout)
}

// FormatDateTime formats a timestamp for page footers.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// FromUnix converts backup timestamps, whole seconds since the epoch.
func FromUnix(sec int64) time.Time {
	return time.Unix(sec, 0)
}
