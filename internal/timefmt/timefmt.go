// Package timefmt renders care-event timestamps the way the overview
// page shows them: short relative phrases for recent activity and
// calendar buckets for anything older.
package timefmt

import (
	"fmt"
	"time"
)

// Relative formats t against now as a short relative phrase.
// Sub-minute differences collapse to "just now"; future timestamps
// (clock skew between client and backend) do too.
func Relative(t, now time.Time) string {
	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		return plural(int(d.Minutes()), "minute")
	}
	if d < 24*time.Hour {
		return plural(int(d.Hours()), "hour")
	}
	return CalendarAgo(t, now)
}

// CalendarAgo buckets t against now by calendar day, not by 24h
// division: an event at 23:50 yesterday is "yesterday" even if it was
// twenty minutes ago.
func CalendarAgo(t, now time.Time) string {
	t = t.In(now.Location())
	days := calendarDays(t, now)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 31:
		return plural(days, "day")
	case days < 365:
		months := monthsBetween(t, now)
		if months < 1 {
			months = 1
		}
		return plural(months, "month")
	default:
		years := now.Year() - t.Year()
		if monthsBetween(t, now) < years*12 {
			years--
		}
		if years < 1 {
			years = 1
		}
		return plural(years, "year")
	}
}

func calendarDays(t, now time.Time) int {
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	start := time.Date(ty, tm, td, 0, 0, 0, 0, now.Location())
	end := time.Date(ny, nm, nd, 0, 0, 0, 0, now.Location())
	return int(end.Sub(start) / (24 * time.Hour))
}

func monthsBetween(t, now time.Time) int {
	months := (now.Year()-t.Year())*12 + int(now.Month()) - int(t.Month())
	if now.Day() < t.Day() {
		months--
	}
	return months
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
