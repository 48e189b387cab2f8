// ABOUTME: Tests for recency window parsing and calendar-day-difference math.
// ABOUTME: Pins the today/yesterday boundary semantics independently of any store.

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindowToken(t *testing.T) {
	tests := []struct {
		token string
		want  Window
		ok    bool
	}{
		{"hoje", WindowToday, true},
		{"ontem", WindowYesterday, true},
		{"semana", WindowLast7d, true},
		{"mes", WindowLast30d, true},
		{"3meses", WindowLast90d, true},
		{"6meses", WindowLast180d, true},
		{"1ano", WindowLast365d, true},
		{"todos", "", false},
		{"", "", false},
		{"HOJE", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			w, ok := ParseWindowToken(tt.token)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, w)
			}
		})
	}
}

func TestDayDiff(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.Local)

	tests := []struct {
		name string
		then time.Time
		want int
	}{
		{"same moment", now, 0},
		{"earlier same day", time.Date(2025, 3, 10, 0, 1, 0, 0, time.Local), 0},
		{"late last night is yesterday", time.Date(2025, 3, 9, 23, 59, 0, 0, time.Local), 1},
		{"a week ago", time.Date(2025, 3, 3, 14, 30, 0, 0, time.Local), 7},
		{"last year", time.Date(2024, 3, 10, 14, 30, 0, 0, time.Local), 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayDiff(now, tt.then))
		})
	}
}

func TestDayDiff_CalendarNotRolling(t *testing.T) {
	// 2h apart across midnight: different calendar days even though the
	// rolling distance is far under 24h.
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.Local)
	then := time.Date(2025, 3, 9, 23, 0, 0, 0, time.Local)
	require.Equal(t, 1, DayDiff(now, then))

	// 23h apart within the same calendar day distance rules.
	now = time.Date(2025, 3, 10, 23, 30, 0, 0, time.Local)
	then = time.Date(2025, 3, 10, 0, 30, 0, 0, time.Local)
	require.Equal(t, 0, DayDiff(now, then))
}

func TestWindow_Matches(t *testing.T) {
	tests := []struct {
		window  Window
		dayDiff int
		want    bool
	}{
		{WindowAll, 0, true},
		{WindowAll, 9999, true},
		{WindowToday, 0, true},
		{WindowToday, 1, false},
		{WindowYesterday, 1, true},
		{WindowYesterday, 0, false},
		{WindowYesterday, 2, false},
		{WindowLast7d, 0, true},
		{WindowLast7d, 7, true},
		{WindowLast7d, 8, false},
		{WindowLast30d, 30, true},
		{WindowLast30d, 31, false},
		{WindowLast90d, 90, true},
		{WindowLast180d, 180, true},
		{WindowLast365d, 365, true},
		{WindowLast365d, 366, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.window.Matches(tt.dayDiff),
			"window=%s dayDiff=%d", tt.window, tt.dayDiff)
	}
}

func TestWindow_TodaySubsetOfWeek(t *testing.T) {
	for diff := 0; diff <= 400; diff++ {
		if WindowToday.Matches(diff) {
			assert.True(t, WindowLast7d.Matches(diff),
				"every today match must also match last_7d (diff=%d)", diff)
		}
	}
}
