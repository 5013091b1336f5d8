// Package strategy turns anchors and guide lines into per-bar arm/trigger
// signals for one projected session.
package strategy

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"Springboard/internal/anchor"
	"Springboard/internal/calculator"
	"Springboard/internal/model"
	"Springboard/internal/projector"
	"Springboard/internal/timegrid"
)

// Input is everything one run consumes for a projected day.
type Input struct {
	Day       time.Time
	Prior     []model.Bar
	Overnight []model.Bar
	Session   []model.Bar
	// Manual anchors replace detection when present.
	Manual []model.ManualAnchor
	// Labels restricts the active lines to these anchors.
	Labels []string
}

// InputFrom wraps collected session bars.
func InputFrom(sb *model.SessionBars) Input {
	return Input{
		Day:       sb.Day,
		Prior:     sb.Prior,
		Overnight: sb.Overnight,
		Session:   sb.Session,
	}
}

// Run validates the input, detects anchors, projects lines and evaluates
// every line in parallel. Bars are never repaired: the first schema, order or
// cadence violation is returned.
func Run(in Input, cfg Config) (*model.Evaluation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if in.Day.IsZero() {
		return nil, errors.New("projected day is required")
	}
	g := cfg.Grid
	for _, s := range []struct {
		name string
		bars []model.Bar
	}{
		{"prior session", in.Prior},
		{"overnight", in.Overnight},
		{"session", in.Session},
	} {
		if err := model.ValidateBars(s.bars, g.Block); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	var anchors []model.Anchor
	var err error
	if len(in.Manual) > 0 {
		anchors, err = anchor.FromManual(in.Manual)
	} else {
		anchors, err = anchor.Detect(in.Prior, cfg.Anchor)
	}
	if err != nil {
		return nil, fmt.Errorf("anchors: %w", err)
	}

	lines := projector.Select(projector.Lines(anchors, cfg.Slopes), in.Labels)
	from, to := g.OvernightRange(in.Day)
	overnight := timegrid.Between(in.Overnight, from, to)
	gate := OvernightGate(g, lines, overnight)
	session := g.SessionBars(in.Session, in.Day)

	results := make([]model.LineResult, len(lines))
	var eg errgroup.Group
	eg.SetLimit(cfg.workers())
	for i, l := range lines {
		i, l := i, l
		eg.Go(func() error {
			results[i] = model.LineResult{
				Line:       l,
				Projection: projector.Project(g, l, in.Day),
				Rows:       EvaluateLine(g, l, session, cfg.Signal, gate),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	day := in.Day.In(g.Loc)
	return &model.Evaluation{
		RunID:          uuid.NewString(),
		Day:            time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, g.Loc),
		Anchors:        anchors,
		Lines:          results,
		OvernightGate:  gate,
		PriorRange:     calculator.SessionRange(in.Prior),
		OvernightRange: calculator.SessionRange(overnight),
	}, nil
}
