// Package calendar contains week and day math for aggregate windows
//
// All day keys are canonical YYYY-MM-DD strings. Week spans are half-open
// [weekStart, weekStart+7d) with the start day controlled by the owner's
// week-start convention
package calendar

import (
	"time"

	perr "tally/internal/platform/errors"
)

// DayFormat is the canonical day key layout
const DayFormat = "2006-01-02"

// WeekStart is the owner's week-start convention
type WeekStart string

const (
	// Monday starts weeks on Monday (ISO style)
	Monday WeekStart = "MONDAY"
	// Sunday starts weeks on Sunday (US style)
	Sunday WeekStart = "SUNDAY"
)

// ParseWeekStart validates a convention string
func ParseWeekStart(s string) (WeekStart, error) {
	switch WeekStart(s) {
	case Monday, Sunday:
		return WeekStart(s), nil
	case "":
		return Monday, nil
	}
	return "", perr.InvalidArgf("unknown week start %q", s)
}

// Weekday returns the time.Weekday the week begins on
func (w WeekStart) Weekday() time.Weekday {
	if w == Sunday {
		return time.Sunday
	}
	return time.Monday
}

// Location resolves an IANA timezone name, empty means UTC
func Location(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, perr.InvalidArgf("unknown timezone %q", name)
	}
	return loc, nil
}

// DayKey formats t as a canonical day string in its own location
func DayKey(t time.Time) string { return t.Format(DayFormat) }

// ParseDay parses a canonical day string as midnight in loc
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DayFormat, s, loc)
	if err != nil {
		return time.Time{}, perr.InvalidArgf("bad day %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// Midnight truncates t to the start of its calendar day
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the week containing t per the convention
func StartOfWeek(t time.Time, ws WeekStart) time.Time {
	day := Midnight(t)
	diff := int(day.Weekday()) - int(ws.Weekday())
	if diff < 0 {
		diff += 7
	}
	return day.AddDate(0, 0, -diff)
}

// WeekEnd returns the last calendar day of the week starting at weekStart
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 6)
}

// WeekEndInstant returns the exclusive upper bound of the week span
func WeekEndInstant(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 7)
}

// DaysOfWeek returns the seven days of the week in chronological order
func DaysOfWeek(weekStart time.Time) []time.Time {
	out := make([]time.Time, 7)
	for i := range out {
		out[i] = weekStart.AddDate(0, 0, i)
	}
	return out
}

// IsWeekend reports whether t falls on Saturday or Sunday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeeksOverlapping returns the week-start days of every week touching
// the inclusive day range [start, end]
func WeeksOverlapping(start, end time.Time, ws WeekStart) []time.Time {
	if end.Before(start) {
		return nil
	}
	first := StartOfWeek(start, ws)
	last := StartOfWeek(end, ws)
	var out []time.Time
	for w := first; !w.After(last); w = w.AddDate(0, 0, 7) {
		out = append(out, w)
	}
	return out
}

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
