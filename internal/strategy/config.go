package strategy

import (
	"fmt"
	"math"
	"runtime"

	"Springboard/internal/anchor"
	"Springboard/internal/projector"
	"Springboard/internal/timegrid"
)

// SignalParams tunes the per-bar arm/trigger evaluation.
type SignalParams struct {
	TouchTolerance float64
	// BodyTolerance widens the body range used to tell body from wick touches.
	BodyTolerance                  float64
	AllowReuse                     bool
	RearmAfterBars                 int
	ShortRequiresBelowAllOvernight bool
	StopMargin                     float64
}

// DefaultSignalParams mirrors the desk defaults.
func DefaultSignalParams() SignalParams {
	return SignalParams{
		TouchTolerance:                 0.5,
		BodyTolerance:                  0,
		AllowReuse:                     true,
		RearmAfterBars:                 2,
		ShortRequiresBelowAllOvernight: true,
		StopMargin:                     0.8,
	}
}

// Config is the immutable engine configuration threaded through a run.
type Config struct {
	Anchor  anchor.Params
	Slopes  projector.Slopes
	Signal  SignalParams
	Grid    timegrid.Grid
	Workers int
}

// DefaultConfig returns the default engine configuration on grid.
func DefaultConfig(grid timegrid.Grid) Config {
	return Config{
		Anchor: anchor.DefaultParams(),
		Slopes: projector.DefaultSlopes(),
		Signal: DefaultSignalParams(),
		Grid:   grid,
	}
}

// Validate checks every numeric knob.
func (c Config) Validate() error {
	if err := c.Anchor.Validate(); err != nil {
		return err
	}
	if c.Grid.Block <= 0 || c.Grid.Loc == nil {
		return fmt.Errorf("time grid is not initialised")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"slope_down", c.Slopes.Entry},
		{"slope_up", c.Slopes.Exit},
		{"touch_tolerance", c.Signal.TouchTolerance},
		{"body_tolerance", c.Signal.BodyTolerance},
		{"stop_margin", c.Signal.StopMargin},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be finite", f.name)
		}
	}
	if c.Signal.TouchTolerance < 0 || c.Signal.BodyTolerance < 0 {
		return fmt.Errorf("tolerances must be non-negative")
	}
	if c.Signal.RearmAfterBars < 0 {
		return fmt.Errorf("reuse_rearm_after_bars must be non-negative, got %d", c.Signal.RearmAfterBars)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}
