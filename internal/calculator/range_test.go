package calculator

import (
	"testing"

	"Springboard/internal/model"
)

func TestCalculateRange(t *testing.T) {
	bars := []model.Bar{
		{High: 10, Low: 8},
		{High: 12, Low: 9},
		{High: 11, Low: 7.5},
	}
	high, low, err := CalculateRange(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high != 12 || low != 7.5 {
		t.Errorf("range = %v/%v, want 12/7.5", high, low)
	}
	if r := SessionRange(bars); r == nil || r.High != 12 || r.Low != 7.5 {
		t.Errorf("unexpected session range %+v", r)
	}
}

func TestCalculateRange_Empty(t *testing.T) {
	if _, _, err := CalculateRange(nil); err == nil {
		t.Error("expected an error for no bars")
	}
	if r := SessionRange(nil); r != nil {
		t.Errorf("expected nil range, got %+v", r)
	}
}
