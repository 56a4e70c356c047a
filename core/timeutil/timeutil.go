// Package timeutil converts between clock times, calendar dates and the relative labels shown next to deadlines.
package timeutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// Weekdays
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

var (
	AllWeekdays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

	weekdayShortLabels = map[string]string{
		Monday:    "Mon",
		Tuesday:   "Tue",
		Wednesday: "Wed",
		Thursday:  "Thu",
		Friday:    "Fri",
		Saturday:  "Sat",
		Sunday:    "Sun",
	}
)

// Due labels
const (
	LabelOverdue  = "Overdue"
	LabelToday    = "Today"
	LabelTomorrow = "Tomorrow"

	weekLen = 7
)

func IsWeekday(day string) bool {
	_, ok := weekdayShortLabels[day]
	return ok
}

// WeekdayShortLabel returns the 3-letter label of a weekday identifier; unknown input is returned as is.
func WeekdayShortLabel(day string) string {
	if label, ok := weekdayShortLabels[day]; ok {
		return label
	}
	return day
}

// DaysUntil counts the calendar days from now to due, in now's location.
// Anything later on the next calendar day is 1, earlier today is 0 and any previous day is negative.
func DaysUntil(due, n time.Time) int {
	loc := n.Location()
	dueDay := now.New(due.In(loc)).BeginningOfDay()
	today := now.New(n).BeginningOfDay()
	// round to absorb DST shifts (23h/25h days)
	return int(math.Round(dueDay.Sub(today).Hours() / 24))
}

// RelativeDueLabel returns "Overdue", "Today", "Tomorrow", the weekday name within a week, or a short date beyond.
// The branches are evaluated in this order, so boundary days resolve to the earlier one.
func RelativeDueLabel(due, n time.Time) string {
	days := DaysUntil(due, n)
	due = due.In(n.Location())
	switch {
	case days < 0:
		return LabelOverdue
	case days == 0:
		return LabelToday
	case days == 1:
		return LabelTomorrow
	case days <= weekLen:
		return due.Weekday().String()
	default:
		return due.Format("Jan 2")
	}
}

// DueInLabel is the compact countdown used on the dashboard.
func DueInLabel(days int) string {
	switch {
	case days <= 0:
		return "Due today"
	case days == 1:
		return "Due in 1 day"
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}

// IsOverdue reports whether an uncompleted deadline has passed.
func IsOverdue(due time.Time, completed bool, n time.Time) bool {
	return !completed && due.Before(n)
}

// FormatDateForInput formats t as an HTML date input value (YYYY-MM-DD).
func FormatDateForInput(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// ParseDueDate accepts an RFC 3339 timestamp or a date input value (YYYY-MM-DD).
// A bare date means the end of that day in loc.
func ParseDueDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q", s)
	}
	return now.New(d).EndOfDay(), nil
}

// ClockTime is a time of day without a date.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses a 24-hour "HH:MM" string.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// MustParseClockTime is like ParseClockTime but panics on error.
func MustParseClockTime(s string) ClockTime {
	ct, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return ct
}

func (ct ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", ct.Hour, ct.Minute)
}

// Minutes returns the number of minutes since midnight.
func (ct ClockTime) Minutes() int { return ct.Hour*60 + ct.Minute }

func (ct ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ct.String())
}

func (ct *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*ct = ClockTime{}
		return nil
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

// FormatClockTime renders ct on a 12-hour clock, eg. "9:05 AM".
func FormatClockTime(ct ClockTime) string {
	return time.Date(2000, time.January, 1, ct.Hour, ct.Minute, 0, 0, time.UTC).Format("3:04 PM")
}

// FormatClockRange renders "9:00 AM - 10:15 AM".
func FormatClockRange(start, end ClockTime) string {
	return FormatClockTime(start) + " - " + FormatClockTime(end)
}
