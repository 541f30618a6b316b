// Package timeslot holds the clinic's wall-clock scheduling primitives:
// AM/PM classification, the fixed one-hour visit length, slot labels of the
// form "09:00", and the day window used by appointment range queries.
package timeslot

import (
	"fmt"
	"strings"
	"time"
)

// VisitDuration is the length of every appointment. The clinic books in
// fixed one-hour visits; end times are always derived, never stored.
const VisitDuration = time.Hour

// Period is the half of the day a time falls into.
type Period int

const (
	AM Period = iota
	PM
)

func (p Period) String() string {
	if p == AM {
		return "AM"
	}
	return "PM"
}

// ParsePeriod parses "am" or "pm", case-insensitively.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AM":
		return AM, nil
	case "PM":
		return PM, nil
	}
	return AM, fmt.Errorf("invalid period %q: want AM or PM", s)
}

// Classify returns AM for local wall-clock hours before noon, PM otherwise.
func Classify(t time.Time) Period {
	if t.Hour() < 12 {
		return AM
	}
	return PM
}

// End returns the end instant of a visit starting at start.
func End(start time.Time) time.Time {
	return start.Add(VisitDuration)
}

// TimeOfDay is a wall-clock time with minute precision, the parsed form of
// a slot label. Comparisons are plain struct equality.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseLabel parses a slot label such as "09:00".
func ParseLabel(label string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", label)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid slot label %q: %w", label, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Of extracts the time of day from an instant.
func Of(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Label renders the time of day in the persisted "HH:MM" form.
func (td TimeOfDay) Label() string {
	return fmt.Sprintf("%02d:%02d", td.Hour, td.Minute)
}

// Period classifies the time of day as AM or PM.
func (td TimeOfDay) Period() Period {
	if td.Hour < 12 {
		return AM
	}
	return PM
}

// At anchors the time of day on the calendar day of date, in date's location.
func (td TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), td.Hour, td.Minute, 0, 0, date.Location())
}

// DayWindow returns the appointment query window for the calendar day of
// date: [00:00, 23:00). The upper bound is 23 hours, not 24: the range
// queries have always used startOfDay..startOfDay+23h, so a 23:30 booking
// falls outside its own day. Callers depend on this bound; do not widen it
// without migrating the stored schedules.
func DayWindow(date time.Time) (start, end time.Time) {
	start = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.Add(23 * time.Hour)
}
