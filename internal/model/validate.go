package model

import (
	"fmt"
	"math"
	"time"
)

// ValidateBars checks a series for schema, ordering and cadence violations.
// The first violation found is returned; nothing is repaired.
func ValidateBars(bars []Bar, cadence time.Duration) error {
	if cadence <= 0 {
		return fmt.Errorf("cadence must be positive, got %v", cadence)
	}
	for i, b := range bars {
		if err := checkSchema(i, b); err != nil {
			return err
		}
	}
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1].Time, bars[i].Time
		if !cur.After(prev) {
			return &TimeOrderError{Index: i, Time: cur, Previous: prev, Duplicate: cur.Equal(prev)}
		}
		if gap := cur.Sub(prev); gap%cadence != 0 {
			return &CadenceError{Index: i, Time: cur, Gap: gap, Cadence: cadence}
		}
	}
	return nil
}

func checkSchema(i int, b Bar) error {
	if b.Time.IsZero() {
		return &SchemaError{Index: i, Field: "time"}
	}
	fields := []struct {
		name string
		v    float64
	}{
		{"open", b.Open},
		{"high", b.High},
		{"low", b.Low},
		{"close", b.Close},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &SchemaError{Index: i, Time: b.Time, Field: f.name}
		}
	}
	return nil
}
