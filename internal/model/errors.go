package model

import (
	"fmt"
	"time"
)

// SchemaError reports a bar with a missing or non-finite required field.
type SchemaError struct {
	Index int
	Time  time.Time
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("bar %d (%s): missing or invalid field %q", e.Index, formatTime(e.Time), e.Field)
}

// TimeOrderError reports a timestamp that does not strictly follow its predecessor.
type TimeOrderError struct {
	Index     int
	Time      time.Time
	Previous  time.Time
	Duplicate bool
}

func (e *TimeOrderError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("bar %d: duplicate timestamp %s", e.Index, formatTime(e.Time))
	}
	return fmt.Sprintf("bar %d: timestamp %s is before previous %s", e.Index, formatTime(e.Time), formatTime(e.Previous))
}

// CadenceError reports a gap that is not a whole multiple of the bar length.
type CadenceError struct {
	Index   int
	Time    time.Time
	Gap     time.Duration
	Cadence time.Duration
}

func (e *CadenceError) Error() string {
	return fmt.Sprintf("bar %d (%s): gap %v is not a multiple of %v", e.Index, formatTime(e.Time), e.Gap, e.Cadence)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "no timestamp"
	}
	return t.Format(time.RFC3339)
}
