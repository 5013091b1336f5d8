package collector

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"Springboard/internal/model"
	"Springboard/internal/timegrid"
)

// MockFetcher serves fixed bars, or a deterministic synthetic series on the
// grid cadence when Bars is nil. Used for development and testing.
type MockFetcher struct {
	Price float64
	Grid  timegrid.Grid
	Bars  []model.Bar
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ string, from, to time.Time) ([]model.Bar, error) {
	if m.Bars != nil {
		return timegrid.Between(m.Bars, from, to), nil
	}
	return generateMockBars(m.Grid, m.Price, from, to), nil
}

func generateMockBars(g timegrid.Grid, basePrice float64, from, to time.Time) []model.Bar {
	if g.Block <= 0 {
		return nil
	}
	var bars []model.Bar
	for t := g.AlignUp(from); t.Before(to); t = t.Add(g.Block) {
		if g.InMaintenance(t) {
			continue
		}
		step := float64(t.Unix() / int64(g.Block/time.Second))
		p := basePrice * (1 + 0.002*math.Sin(step/3))
		open := basePrice * (1 + 0.002*math.Sin((step-1)/3))
		bars = append(bars, model.Bar{
			Time:  t,
			Open:  open,
			High:  math.Max(open, p) * 1.0005,
			Low:   math.Min(open, p) * 0.9995,
			Close: p,
		})
	}
	return bars
}

// Collector assembles the three bar series one run consumes.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
	Grid    timegrid.Grid
	logger  zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, grid timegrid.Grid) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Symbol:  symbol,
		Grid:    grid,
		logger:  log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Collect fetches the previous session's RTH bars, the overnight bars and
// whatever of the projected day's RTH has printed so far.
func (c *Collector) Collect(day time.Time) (*model.SessionBars, error) {
	g := c.Grid
	prior := g.PreviousSession(day)

	priorBars, err := c.Fetcher.FetchBars(c.Symbol, g.SessionOpen(prior), g.SessionClose(prior))
	if err != nil {
		return nil, fmt.Errorf("fetch prior session: %w", err)
	}
	from, to := g.OvernightRange(day)
	overnight, err := c.Fetcher.FetchBars(c.Symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch overnight: %w", err)
	}
	session, err := c.Fetcher.FetchBars(c.Symbol, g.SessionOpen(day), g.SessionClose(day))
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}

	if len(priorBars) == 0 {
		c.logger.Warn().Time("prior", prior).Msg("no prior session bars, no anchors will be detected")
	}
	c.logger.Info().
		Str("symbol", c.Symbol).
		Time("day", day).
		Int("prior", len(priorBars)).
		Int("overnight", len(overnight)).
		Int("session", len(session)).
		Msg("bars collected")

	return &model.SessionBars{
		Symbol:    c.Symbol,
		Day:       day,
		Prior:     priorBars,
		Overnight: overnight,
		Session:   session,
	}, nil
}
