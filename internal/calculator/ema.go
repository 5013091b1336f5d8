package calculator

import (
	"errors"

	"Springboard/internal/model"
)

// CalculateEMA computes the exponential moving average of values with smoothing
// factor 2/(period+1), seeded with the first value. The output has the same
// length as the input and element i depends only on values[0..i].
func CalculateEMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	result := make([]float64, len(values))
	if len(values) == 0 {
		return result, nil
	}
	alpha := 2.0 / (float64(period) + 1.0)
	result[0] = values[0]
	for i := 1; i < len(values); i++ {
		result[i] = alpha*values[i] + (1-alpha)*result[i-1]
	}
	return result, nil
}

// CloseEMA returns the EMA of bar closes.
func CloseEMA(bars []model.Bar, period int) ([]float64, error) {
	return CalculateEMA(extractCloses(bars), period)
}

func extractCloses(bars []model.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
