package calculator

import (
	"errors"
	"math"

	"Springboard/internal/model"
)

// CalculateRange scans bars and returns their highest high and lowest low.
func CalculateRange(bars []model.Bar) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, nil
}

// SessionRange is CalculateRange as a model value; nil for an empty series.
func SessionRange(bars []model.Bar) *model.Range {
	high, low, err := CalculateRange(bars)
	if err != nil {
		return nil
	}
	return &model.Range{High: high, Low: low}
}
