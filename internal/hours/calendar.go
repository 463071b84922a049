package hours

import (
	"fmt"
	"strings"
	"time"

	"github.com/sakif/punchclock/internal/model"
)

// DefaultWeekStart is the weekday every report week begins on.
const DefaultWeekStart = time.Sunday

// DateLayout is the calendar-day format used in requests and reports.
const DateLayout = "2006-01-02"

// MonthLayout is the year-month format used in requests.
const MonthLayout = "2006-01"

// Calendar fixes the time zone and week boundary that all reports use, so
// "which day was this punch on" has one answer everywhere.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// NewCalendar returns a Calendar in loc (UTC when nil).
func NewCalendar(loc *time.Location, weekStart time.Weekday) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc, WeekStart: weekStart}
}

// DefaultCalendar is UTC with Sunday-start weeks.
func DefaultCalendar() Calendar {
	return NewCalendar(time.UTC, DefaultWeekStart)
}

// DateKey formats t as the calendar day it falls on.
func (c Calendar) DateKey(t time.Time) string {
	return t.In(c.Location).Format(DateLayout)
}

// StartOfDay returns midnight of the day containing t.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.Location)
}

// DayRange returns [midnight, next midnight) for the day containing t.
func (c Calendar) DayRange(t time.Time) (time.Time, time.Time) {
	start := c.StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// MonthRange returns [first day 00:00, first day of next month 00:00).
func (c Calendar) MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, c.Location)
	return start, start.AddDate(0, 1, 0)
}

// StartOfWeek returns midnight of the week-start day on or before t.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	back := (int(day.Weekday()) - int(c.WeekStart) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// IsWeekStart reports whether t is exactly midnight of a week-start day.
func (c Calendar) IsWeekStart(t time.Time) bool {
	return c.StartOfWeek(t).Equal(t)
}

// ParseDate parses YYYY-MM-DD as midnight in the calendar's zone.
func (c Calendar) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), c.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("hours: invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseMonth parses YYYY-MM.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("hours: invalid month %q, want YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// ParseWeekday accepts an English weekday name in any case ("sunday", "Mon").
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || (len(n) == 3 && n == full[:3]) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("hours: unknown weekday %q", name)
}

// DistinctDays counts the calendar days on which at least one punch falls.
func (c Calendar) DistinctDays(punches []model.Punch) int {
	days := make(map[string]struct{}, len(punches))
	for _, p := range punches {
		days[c.DateKey(p.Timestamp)] = struct{}{}
	}
	return len(days)
}
