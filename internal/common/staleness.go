package common

import (
	"fmt"
	"strings"
	"time"
)

// ExchangeSchedule describes when an exchange's end-of-day bar becomes available
type ExchangeSchedule struct {
	Timezone         string
	CloseTime        string // "HH:MM" local
	DataDelayMinutes int
	WorkingDays      []time.Weekday
	Holidays         []time.Time
}

// DefaultWorkingDays returns Monday to Friday
func DefaultWorkingDays() []time.Weekday {
	return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
}

// exchangeSchedules is keyed by EODHD suffix without the dot
var exchangeSchedules = map[string]ExchangeSchedule{
	"US":    {Timezone: "America/New_York", CloseTime: "16:00", DataDelayMinutes: 180},
	"AU":    {Timezone: "Australia/Sydney", CloseTime: "16:00", DataDelayMinutes: 120},
	"LSE":   {Timezone: "Europe/London", CloseTime: "16:30", DataDelayMinutes: 120},
	"TO":    {Timezone: "America/Toronto", CloseTime: "16:00", DataDelayMinutes: 180},
	"XETRA": {Timezone: "Europe/Berlin", CloseTime: "17:30", DataDelayMinutes: 120},
}

// ScheduleForExchange returns the schedule for an exchange code ("NASDAQ", "ASX", "US").
// Unknown exchanges close at 16:00 UTC.
func ScheduleForExchange(exchange string) ExchangeSchedule {
	key := strings.TrimPrefix(ExchangeToSuffix[strings.ToUpper(exchange)], ".")
	schedule, ok := exchangeSchedules[key]
	if !ok {
		schedule = ExchangeSchedule{Timezone: "UTC", CloseTime: "16:00", DataDelayMinutes: 180}
	}
	schedule.WorkingDays = DefaultWorkingDays()
	return schedule
}

// StalenessResult contains the result of a staleness check.
type StalenessResult struct {
	IsStale bool
	// Expected is the most recent trading day whose bar should be published by now
	Expected time.Time
	Reason   string
}

// CheckSeriesStaleness reports whether a series whose last bar is lastBar
// misses a trading day that should already be published at now.
func CheckSeriesStaleness(lastBar, now time.Time, schedule ExchangeSchedule) StalenessResult {
	loc, err := time.LoadLocation(schedule.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	expected := GetLastTradingDay(local, schedule.WorkingDays, schedule.Holidays)
	if local.Before(GetDataAvailableTime(expected, schedule.CloseTime, loc, schedule.DataDelayMinutes)) {
		expected = GetLastTradingDay(expected.AddDate(0, 0, -1), schedule.WorkingDays, schedule.Holidays)
	}

	last := dateOnly(lastBar)
	if last.Before(expected) {
		return StalenessResult{
			IsStale:  true,
			Expected: expected,
			Reason: fmt.Sprintf("last bar %s is older than last published trading day %s",
				last.Format("2006-01-02"), expected.Format("2006-01-02")),
		}
	}
	return StalenessResult{
		Expected: expected,
		Reason:   fmt.Sprintf("last bar %s is current", last.Format("2006-01-02")),
	}
}

// IsWorkingDay checks if a given date is a working day for the exchange.
// It accounts for both weekends (based on workingDays) and holidays.
func IsWorkingDay(t time.Time, workingDays []time.Weekday, holidays []time.Time) bool {
	isWorkDay := false
	for _, wd := range workingDays {
		if wd == t.Weekday() {
			isWorkDay = true
			break
		}
	}
	if !isWorkDay {
		return false
	}

	day := dateOnly(t)
	for _, h := range holidays {
		if day.Equal(dateOnly(h)) {
			return false
		}
	}
	return true
}

// GetLastTradingDay returns the most recent trading day on or before t's calendar date
func GetLastTradingDay(t time.Time, workingDays []time.Weekday, holidays []time.Time) time.Time {
	current := dateOnly(t)

	// Ten days covers the longest holiday runs
	for i := 0; i < 10; i++ {
		if IsWorkingDay(current, workingDays, holidays) {
			return current
		}
		current = current.AddDate(0, 0, -1)
	}
	return dateOnly(t)
}

// GetDataAvailableTime returns when the bar for tradingDay is published:
// the local close plus the provider delay.
func GetDataAvailableTime(tradingDay time.Time, closeTime string, loc *time.Location, delayMinutes int) time.Time {
	hour, min := 16, 0
	if closeTime != "" {
		if _, err := fmt.Sscanf(closeTime, "%d:%d", &hour, &min); err != nil {
			hour, min = 16, 0
		}
	}
	closeAt := time.Date(tradingDay.Year(), tradingDay.Month(), tradingDay.Day(), hour, min, 0, 0, loc)
	return closeAt.Add(time.Duration(delayMinutes) * time.Minute)
}

// dateOnly keeps the calendar date of t in its own location, at UTC midnight
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
