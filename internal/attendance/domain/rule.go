package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time within a day, independent of any date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// At anchors the time of day to a calendar date in the given location.
func (t TimeOfDay) At(d Date, loc *time.Location) time.Time {
	return d.At(t.Hour, t.Minute, loc)
}

// String formats the time of day as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Rule is a resolved attendance rule as consumed by the status engine.
//
// Configuration invariant: AbsentMinutes must exceed GraceMinutes, otherwise
// the late window between them is degenerate. The engine does not enforce
// this; rule management validates it on write.
type Rule struct {
	StandardCheckIn TimeOfDay
	GraceMinutes    int
	AbsentMinutes   int
}
