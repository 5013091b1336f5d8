package timegrid

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time of day expressed as the offset from midnight.
type Clock time.Duration

// ParseClock parses an "HH:MM" string. "24:00" is accepted as end of day.
func ParseClock(s string) (Clock, error) {
	if s == "24:00" {
		return Clock(24 * time.Hour), nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return Clock(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

// MustClock is ParseClock for constant inputs.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	d := time.Duration(c)
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// ClockOf returns the wall-clock time of day of t in loc.
func ClockOf(t time.Time, loc *time.Location) Clock {
	t = t.In(loc)
	return Clock(time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond()))
}

// on returns the instant on the calendar day of day (in loc) at wall clock c.
func (c Clock) on(day time.Time, loc *time.Location) time.Time {
	day = day.In(loc)
	d := time.Duration(c)
	return time.Date(day.Year(), day.Month(), day.Day(), int(d/time.Hour), int(d%time.Hour/time.Minute), 0, 0, loc)
}
