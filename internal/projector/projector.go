package projector

import (
	"fmt"
	"time"

	"Springboard/internal/model"
	"Springboard/internal/timegrid"
)

// Slopes holds the per-block slope of the entry line and, when Mirror is
// set, of the exit line sharing the same anchor.
type Slopes struct {
	Entry  float64
	Exit   float64
	Mirror bool
}

// DefaultSlopes is -0.25 per block descending with a +0.25 mirror.
func DefaultSlopes() Slopes {
	return Slopes{Entry: -0.25, Exit: 0.25, Mirror: true}
}

// Value returns the line price at t. At the anchor time zero blocks have
// elapsed and the anchor price is returned unchanged.
func Value(g timegrid.Grid, l model.GuideLine, t time.Time) float64 {
	blocks := g.BlocksBetween(l.AnchorTime, t)
	if blocks == 0 {
		return l.AnchorPrice
	}
	return l.AnchorPrice + l.SlopePerBlock*float64(blocks)
}

// Lines builds guide lines for anchors, entry before exit per anchor.
func Lines(anchors []model.Anchor, s Slopes) []model.GuideLine {
	lines := make([]model.GuideLine, 0, len(anchors)*2)
	for _, a := range anchors {
		lines = append(lines, model.GuideLine{
			AnchorLabel:   a.Label,
			AnchorTime:    a.Time,
			AnchorPrice:   a.Price,
			SlopePerBlock: s.Entry,
			Kind:          model.LineEntry,
		})
		if s.Mirror {
			lines = append(lines, model.GuideLine{
				AnchorLabel:   a.Label,
				AnchorTime:    a.Time,
				AnchorPrice:   a.Price,
				SlopePerBlock: s.Exit,
				Kind:          model.LineExit,
			})
		}
	}
	return lines
}

// Select keeps the lines whose anchor label is listed. No labels keeps all.
func Select(lines []model.GuideLine, labels []string) []model.GuideLine {
	if len(labels) == 0 {
		return lines
	}
	want := make(map[string]bool, len(labels))
	for _, l := range labels {
		want[l] = true
	}
	var out []model.GuideLine
	for _, l := range lines {
		if want[l.AnchorLabel] {
			out = append(out, l)
		}
	}
	return out
}

// Project evaluates the line at every RTH slot of day.
func Project(g timegrid.Grid, l model.GuideLine, day time.Time) []model.ProjectionPoint {
	slots := g.RTHSlots(day)
	points := make([]model.ProjectionPoint, len(slots))
	for i, ts := range slots {
		points[i] = model.ProjectionPoint{Time: ts, Value: Value(g, l, ts)}
	}
	return points
}

// LineThrough returns the entry line from (t1, p1) through (t2, p2).
// Fewer than one elapsed block is treated as one.
func LineThrough(g timegrid.Grid, label string, t1 time.Time, p1 float64, t2 time.Time, p2 float64) (model.GuideLine, error) {
	if !t2.After(t1) {
		return model.GuideLine{}, fmt.Errorf("second point %s must follow first point %s", t2.Format(time.RFC3339), t1.Format(time.RFC3339))
	}
	blocks := g.BlocksBetween(t1, t2)
	if blocks < 1 {
		blocks = 1
	}
	return model.GuideLine{
		AnchorLabel:   label,
		AnchorTime:    t1,
		AnchorPrice:   p1,
		SlopePerBlock: (p2 - p1) / float64(blocks),
		Kind:          model.LineEntry,
	}, nil
}
