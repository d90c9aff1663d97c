package utils

import (
	"time"
)

// FormatTimeIn renders t in the named IANA timezone with a stable layout.
// Unknown or empty timezone names fall back to UTC.
func FormatTimeIn(t time.Time, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02 15:04:05")
}
