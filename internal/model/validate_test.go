package model

import (
	"errors"
	"math"
	"testing"
	"time"
)

func barsAt(times ...time.Time) []Bar {
	bars := make([]Bar, len(times))
	for i, t := range times {
		bars[i] = Bar{Time: t, Open: 100, High: 101, Low: 99, Close: 100.5}
	}
	return bars
}

func TestValidateBars_Valid(t *testing.T) {
	base := time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)
	bars := barsAt(base, base.Add(30*time.Minute), base.Add(2*time.Hour))
	if err := ValidateBars(bars, 30*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateBars(nil, 30*time.Minute); err != nil {
		t.Fatalf("empty series should be valid, got %v", err)
	}
}

func TestValidateBars_Duplicate(t *testing.T) {
	base := time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)
	bars := barsAt(base, base.Add(30*time.Minute), base.Add(30*time.Minute))
	err := ValidateBars(bars, 30*time.Minute)
	var toe *TimeOrderError
	if !errors.As(err, &toe) {
		t.Fatalf("expected TimeOrderError, got %v", err)
	}
	if toe.Index != 2 || !toe.Duplicate {
		t.Errorf("expected duplicate at index 2, got index %d duplicate=%v", toe.Index, toe.Duplicate)
	}
}

func TestValidateBars_NonMonotonic(t *testing.T) {
	base := time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)
	bars := barsAt(base, base.Add(time.Hour), base.Add(30*time.Minute))
	err := ValidateBars(bars, 30*time.Minute)
	var toe *TimeOrderError
	if !errors.As(err, &toe) {
		t.Fatalf("expected TimeOrderError, got %v", err)
	}
	if toe.Duplicate {
		t.Error("out-of-order bar must not be reported as duplicate")
	}
}

func TestValidateBars_Cadence(t *testing.T) {
	base := time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)
	bars := barsAt(base, base.Add(30*time.Minute), base.Add(75*time.Minute))
	err := ValidateBars(bars, 30*time.Minute)
	var ce *CadenceError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CadenceError, got %v", err)
	}
	if ce.Index != 2 || ce.Gap != 45*time.Minute {
		t.Errorf("unexpected cadence error detail: %+v", ce)
	}
}

func TestValidateBars_Schema(t *testing.T) {
	base := time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		bar   Bar
		field string
	}{
		{"zero time", Bar{Open: 1, High: 1, Low: 1, Close: 1}, "time"},
		{"nan high", Bar{Time: base, Open: 1, High: math.NaN(), Low: 1, Close: 1}, "high"},
		{"inf close", Bar{Time: base, Open: 1, High: 1, Low: 1, Close: math.Inf(1)}, "close"},
	}
	for _, tt := range tests {
		err := ValidateBars([]Bar{tt.bar}, 30*time.Minute)
		var se *SchemaError
		if !errors.As(err, &se) {
			t.Errorf("%s: expected SchemaError, got %v", tt.name, err)
			continue
		}
		if se.Field != tt.field {
			t.Errorf("%s: expected field %q, got %q", tt.name, tt.field, se.Field)
		}
	}
}
