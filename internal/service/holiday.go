package service

import "time"

// HolidayFunc tells the estimator whether a moment falls on a holiday
type HolidayFunc func(time.Time) bool

// WeekendAsHoliday treats Saturdays and Sundays as holidays
func WeekendAsHoliday(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// CalendarHolidays matches the given calendar dates, then defers to fallback
func CalendarHolidays(dates []time.Time, fallback HolidayFunc) HolidayFunc {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d.Format(time.DateOnly)] = struct{}{}
	}
	return func(t time.Time) bool {
		if _, ok := set[t.Format(time.DateOnly)]; ok {
			return true
		}
		return fallback != nil && fallback(t)
	}
}
