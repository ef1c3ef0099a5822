package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a time easily
func mustTime(t *testing.T, layout, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(layout, value)
	require.NoError(t, err)
	return parsed
}

func TestIsWorkingDay(t *testing.T) {
	workingDays := DefaultWorkingDays()

	tests := []struct {
		name        string
		date        string
		holidays    []string
		wantWorking bool
	}{
		{"monday", "2025-01-06", nil, true},
		{"friday", "2025-01-10", nil, true},
		{"saturday", "2025-01-11", nil, false},
		{"sunday", "2025-01-12", nil, false},
		{"holiday on monday", "2025-01-06", []string{"2025-01-06"}, false},
		{"holiday on different day", "2025-01-07", []string{"2025-01-06"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var holidays []time.Time
			for _, h := range tt.holidays {
				holidays = append(holidays, mustTime(t, "2006-01-02", h))
			}
			got := IsWorkingDay(mustTime(t, "2006-01-02", tt.date), workingDays, holidays)
			assert.Equal(t, tt.wantWorking, got)
		})
	}
}

func TestGetLastTradingDay(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{"weekday is itself", "2025-01-08", "2025-01-08"},
		{"saturday walks back to friday", "2025-01-11", "2025-01-10"},
		{"sunday walks back to friday", "2025-01-12", "2025-01-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetLastTradingDay(mustTime(t, "2006-01-02", tt.date), DefaultWorkingDays(), nil)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestScheduleForExchange(t *testing.T) {
	assert.Equal(t, "America/New_York", ScheduleForExchange("NASDAQ").Timezone)
	assert.Equal(t, "Australia/Sydney", ScheduleForExchange("asx").Timezone)
	assert.Equal(t, "UTC", ScheduleForExchange("MOON").Timezone)
	assert.Len(t, ScheduleForExchange("US").WorkingDays, 5)
}

func TestCheckSeriesStaleness(t *testing.T) {
	us := ScheduleForExchange("US")

	tests := []struct {
		name         string
		lastBar      string
		now          string
		wantStale    bool
		wantExpected string
	}{
		// 12:00Z is 07:00 New York, Thursday's bar is the latest published
		{"friday morning with thursday bar", "2024-02-29", "2024-03-01T12:00:00Z", false, "2024-02-29"},
		{"friday morning with wednesday bar", "2024-02-28", "2024-03-01T12:00:00Z", true, "2024-02-29"},
		// 23:30Z is 18:30 New York, before close + 3h
		{"friday evening before publish", "2024-02-29", "2024-03-01T23:30:00Z", false, "2024-02-29"},
		{"saturday after publish", "2024-02-29", "2024-03-02T15:00:00Z", true, "2024-03-01"},
		{"monday morning with friday bar", "2024-03-01", "2024-03-04T12:00:00Z", false, "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckSeriesStaleness(
				mustTime(t, "2006-01-02", tt.lastBar),
				mustTime(t, time.RFC3339, tt.now),
				us,
			)
			assert.Equal(t, tt.wantStale, result.IsStale, result.Reason)
			assert.Equal(t, tt.wantExpected, result.Expected.Format("2006-01-02"))
		})
	}
}
