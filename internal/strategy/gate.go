package strategy

import (
	"math"

	"Springboard/internal/model"
	"Springboard/internal/projector"
	"Springboard/internal/timegrid"
)

// OvernightGate reports whether any overnight bar traded strictly below every
// active line at that bar's own time. Missing data keeps the gate closed.
func OvernightGate(g timegrid.Grid, lines []model.GuideLine, overnight []model.Bar) bool {
	if len(lines) == 0 || len(overnight) == 0 {
		return false
	}
	for _, b := range overnight {
		lowest := math.Inf(1)
		for _, l := range lines {
			if v := projector.Value(g, l, b.Time); v < lowest {
				lowest = v
			}
		}
		if b.Low < lowest {
			return true
		}
	}
	return false
}
