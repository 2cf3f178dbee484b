// Package timefmt renders absolute timestamps in the dashboard's fixed
// display timezone and computes alert ages. Stored and compared timestamps
// stay zone-independent; only rendering goes through this package.
package timefmt

import "time"

// DisplayZone is the single civil timezone used for all rendered timestamps.
const DisplayZone = "America/Los_Angeles"

var displayLoc *time.Location

func init() {
	loc, err := time.LoadLocation(DisplayZone)
	if err != nil {
		// Zone database unavailable; fall back to UTC rather than failing
		// startup for a purely presentational concern.
		loc = time.UTC
	}
	displayLoc = loc
}

// Format renders t in the display zone with an explicit zone suffix, e.g.
// "01/02/2026 03:04:05 PM PST". Zero times render as "N/A".
func Format(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.In(displayLoc).Format("01/02/2006 03:04:05 PM MST")
}

// FormatDate renders only the civil date portion in the display zone.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.In(displayLoc).Format("01/02/2006")
}

// AgeMinutes returns the whole minutes elapsed between createdAt and now,
// truncated toward zero.
func AgeMinutes(createdAt, now time.Time) int {
	return int(now.Sub(createdAt) / time.Minute)
}
