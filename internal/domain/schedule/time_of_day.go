package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTimeOfDay = errors.New("time must be formatted as HH:MM")
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	ErrInvalidDate      = errors.New("date must be formatted as YYYY-MM-DD")
)

const (
	MinutesPerDay = 24 * 60
	DateLayout    = "2006-01-02"
)

var minutesPerHour = decimal.NewFromInt(60)

// TimeOfDay is a wall-clock time counted in minutes since midnight.
// 24:00 is accepted as the end of the day.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || minute < 0 || minute > 59 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, ErrInvalidTimeOfDay
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS" with zero seconds
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, ErrInvalidTimeOfDay
	}
	if len(parts) == 3 && parts[2] != "00" {
		return 0, ErrInvalidTimeOfDay
	}
	if len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, ErrInvalidTimeOfDay
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, ErrInvalidTimeOfDay
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, ErrInvalidTimeOfDay
	}
	return NewTimeOfDay(hour, minute)
}

func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(fmt.Sprintf("schedule: invalid time of day %q", s))
	}
	return t
}

func (t TimeOfDay) Minutes() int {
	return int(t)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// On places the time of day on the given calendar date in loc
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(time.Duration(t) * time.Minute)
}

// TimeRange is the half-open interval [start, end) within one day
type TimeRange struct {
	start TimeOfDay
	end   TimeOfDay
}

func NewTimeRange(start, end TimeOfDay) (TimeRange, error) {
	if start < 0 || end > MinutesPerDay || end <= start {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{start: start, end: end}, nil
}

func MustTimeRange(start, end string) TimeRange {
	r, err := NewTimeRange(MustParseTimeOfDay(start), MustParseTimeOfDay(end))
	if err != nil {
		panic(fmt.Sprintf("schedule: invalid range %s-%s", start, end))
	}
	return r
}

func (r TimeRange) Start() TimeOfDay { return r.start }
func (r TimeRange) End() TimeOfDay   { return r.end }

func (r TimeRange) Duration() time.Duration {
	return time.Duration(r.end-r.start) * time.Minute
}

// Hours is exact, e.g. 90 minutes is 1.5
func (r TimeRange) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(r.end - r.start)).Div(minutesPerHour)
}

// Overlaps uses the half-open rule: [s1,e1) and [s2,e2) conflict iff s1 < e2 && s2 < e1
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.start < other.end && other.start < r.end
}

func (r TimeRange) Contains(other TimeRange) bool {
	return r.start <= other.start && r.end >= other.end
}

func (r TimeRange) String() string {
	return "[" + r.start.String() + "," + r.end.String() + ")"
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// DateOf truncates t to its calendar date in loc, normalised to UTC midnight
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
