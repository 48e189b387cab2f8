// ABOUTME: Recency window definitions and calendar-day-difference filtering
// ABOUTME: Single source of truth for the admin-facing window token semantics

package store

import (
	"math"
	"time"
)

// Window selects a recency filter over customer registration dates.
type Window string

const (
	WindowAll       Window = "all"
	WindowToday     Window = "today"
	WindowYesterday Window = "yesterday"
	WindowLast7d    Window = "last_7d"
	WindowLast30d   Window = "last_30d"
	WindowLast90d   Window = "last_90d"
	WindowLast180d  Window = "last_180d"
	WindowLast365d  Window = "last_365d"
)

// windowTokens maps the operator-facing tokens to windows.
var windowTokens = map[string]Window{
	"hoje":   WindowToday,
	"ontem":  WindowYesterday,
	"semana": WindowLast7d,
	"mes":    WindowLast30d,
	"3meses": WindowLast90d,
	"6meses": WindowLast180d,
	"1ano":   WindowLast365d,
}

// maxDayDiff holds the inclusive upper bound on calendar-day difference for
// the bounded windows. Today and Yesterday are exact matches, not bounds.
var maxDayDiff = map[Window]int{
	WindowLast7d:   7,
	WindowLast30d:  30,
	WindowLast90d:  90,
	WindowLast180d: 180,
	WindowLast365d: 365,
}

// ParseWindowToken resolves an operator token (e.g. "semana") to its window.
// Unknown tokens return false so the caller can fall through to normal
// conversational handling.
func ParseWindowToken(token string) (Window, bool) {
	w, ok := windowTokens[token]
	return w, ok
}

// DayDiff returns the calendar-day difference between now and then, in local
// time. Same calendar day is 0, the previous day is 1, and so on. This is a
// day-number difference, not a rolling 24h distance.
func DayDiff(now, then time.Time) int {
	nowDay := startOfDay(now.Local())
	thenDay := startOfDay(then.Local())
	// Rounding absorbs DST-shortened or -lengthened days.
	return int(math.Round(nowDay.Sub(thenDay).Hours() / 24))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Matches reports whether a record with the given day difference from now
// falls inside the window.
func (w Window) Matches(dayDiff int) bool {
	switch w {
	case WindowAll:
		return true
	case WindowToday:
		return dayDiff == 0
	case WindowYesterday:
		return dayDiff == 1
	default:
		bound, ok := maxDayDiff[w]
		return ok && dayDiff >= 0 && dayDiff <= bound
	}
}
