package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekendAsHoliday(t *testing.T) {
	assert.False(t, WeekendAsHoliday(testNow))
	assert.True(t, WeekendAsHoliday(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)))
	assert.True(t, WeekendAsHoliday(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)))
}

func TestCalendarHolidays(t *testing.T) {
	christmas := time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)
	isHoliday := CalendarHolidays([]time.Time{christmas}, WeekendAsHoliday)

	assert.True(t, isHoliday(christmas.Add(15*time.Hour)))
	assert.True(t, isHoliday(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)))
	assert.False(t, isHoliday(testNow))

	calendarOnly := CalendarHolidays([]time.Time{christmas}, nil)
	assert.False(t, calendarOnly(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)))
}
