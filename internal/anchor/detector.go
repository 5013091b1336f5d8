// Package anchor finds springboard highs in a prior session.
//
// A bar is a candidate when its high is a local high. The candidate
// qualifies when, for the first N in [NMin, NMax], the next N bars are all
// bearish while closing above the EMA, and for the first M in [MMin, MMax]
// one of the M bars after that block closes above the candidate high.
// The first qualifying (N, M) pair wins even if a later pair also fits.
package anchor

import (
	"fmt"
	"math"

	"Springboard/internal/calculator"
	"Springboard/internal/model"
)

// Params configures the detector.
type Params struct {
	EMALen int
	NMin   int
	NMax   int
	MMin   int
	MMax   int
}

// DefaultParams returns EMA 8 with N and M both searched over 1..3.
func DefaultParams() Params {
	return Params{EMALen: 8, NMin: 1, NMax: 3, MMin: 1, MMax: 3}
}

// Validate checks the search ranges.
func (p Params) Validate() error {
	if p.EMALen < 1 {
		return fmt.Errorf("ema_len must be >= 1, got %d", p.EMALen)
	}
	if p.NMin < 1 || p.NMax < p.NMin {
		return fmt.Errorf("invalid N range [%d, %d]", p.NMin, p.NMax)
	}
	if p.MMin < 1 || p.MMax < p.MMin {
		return fmt.Errorf("invalid M range [%d, %d]", p.MMin, p.MMax)
	}
	return nil
}

// Detect scans bars in order and returns anchors labelled A1, A2, ... in
// discovery order. An empty result is not an error.
func Detect(bars []model.Bar, p Params) ([]model.Anchor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ema, err := calculator.CloseEMA(bars, p.EMALen)
	if err != nil {
		return nil, fmt.Errorf("ema: %w", err)
	}

	var anchors []model.Anchor
	for i := 1; i < len(bars)-1; i++ {
		if !isLocalHigh(bars, i) {
			continue
		}
		a, ok := qualify(bars, ema, i, p)
		if !ok {
			continue
		}
		a.Label = fmt.Sprintf("A%d", len(anchors)+1)
		anchors = append(anchors, a)
	}
	return anchors, nil
}

func isLocalHigh(bars []model.Bar, i int) bool {
	h := bars[i].High
	return h >= bars[i-1].High && h >= bars[i+1].High
}

// qualify runs the nested (N, M) search for the candidate at index i.
func qualify(bars []model.Bar, ema []float64, i int, p Params) (model.Anchor, bool) {
	h := bars[i].High
	for n := p.NMin; n <= p.NMax; n++ {
		if !bearishAboveEMA(bars, ema, i+1, n) {
			continue
		}
		for m := p.MMin; m <= p.MMax; m++ {
			if k, ok := firstCloseAbove(bars, i+n+1, m, h); ok {
				return model.Anchor{
					Time:        bars[i].Time,
					Price:       h,
					NUsed:       n,
					MUsed:       m,
					ConfirmTime: bars[k].Time,
				}, true
			}
		}
	}
	return model.Anchor{}, false
}

// bearishAboveEMA reports whether all n bars starting at from are bearish and
// close strictly above the EMA. A block running past the series fails.
func bearishAboveEMA(bars []model.Bar, ema []float64, from, n int) bool {
	if from+n > len(bars) {
		return false
	}
	for k := from; k < from+n; k++ {
		if !bars[k].Bearish() || !(bars[k].Close > ema[k]) {
			return false
		}
	}
	return true
}

// firstCloseAbove returns the first index in [from, from+m) whose close
// exceeds price. The window is truncated at the end of the series.
func firstCloseAbove(bars []model.Bar, from, m int, price float64) (int, bool) {
	for k := from; k < from+m && k < len(bars); k++ {
		if bars[k].Close > price {
			return k, true
		}
	}
	return 0, false
}

// FromManual converts caller-supplied anchors. Blank labels are numbered
// M1, M2, ... by position; labels must be unique.
func FromManual(manual []model.ManualAnchor) ([]model.Anchor, error) {
	anchors := make([]model.Anchor, 0, len(manual))
	seen := make(map[string]bool, len(manual))
	for i, m := range manual {
		if m.Time.IsZero() {
			return nil, &model.SchemaError{Index: i, Field: "time"}
		}
		if math.IsNaN(m.Price) || math.IsInf(m.Price, 0) {
			return nil, &model.SchemaError{Index: i, Time: m.Time, Field: "price"}
		}
		label := m.Label
		if label == "" {
			label = fmt.Sprintf("M%d", i+1)
		}
		if seen[label] {
			return nil, fmt.Errorf("duplicate anchor label %q", label)
		}
		seen[label] = true
		anchors = append(anchors, model.Anchor{
			Label:  label,
			Time:   m.Time,
			Price:  m.Price,
			Manual: true,
		})
	}
	return anchors, nil
}
