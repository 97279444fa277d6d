package domain

import "time"

// Date is a calendar date without a time component. Hire dates, leave
// windows and remote-location windows are calendar concepts; comparing them
// as instants invites off-by-one bugs at the midnight rollover, so they get
// their own type.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar date of an instant in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// At returns the instant at the given time of day on this date.
func (d Date) At(hour, minute int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, loc)
}

// DayBounds returns the inclusive start and end instants of the date,
// [D 00:00:00, D 23:59:59.999999999], in the given location.
func (d Date) DayBounds(loc *time.Location) (time.Time, time.Time) {
	start := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// Before reports whether d is before other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is after other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// Equal reports whether d and other are the same calendar date.
func (d Date) Equal(other Date) bool {
	return d == other
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.At(0, 0, time.UTC).Format("2006-01-02")
}

// withinWindow reports whether the date falls inside [start, end], where a
// nil bound means unbounded on that side. Bounds carry date-only meaning.
func withinWindow(d Date, start, end *time.Time) bool {
	if start != nil && d.Before(DateOf(*start)) {
		return false
	}
	if end != nil && d.After(DateOf(*end)) {
		return false
	}
	return true
}
