// Package timegrid counts elapsed bar blocks on a session calendar that
// excludes a daily maintenance window.
package timegrid

import (
	"fmt"
	"time"

	"Springboard/internal/model"
)

// DefaultBlock is the default bar cadence.
const DefaultBlock = 30 * time.Minute

// SessionWindow holds the per-day wall-clock boundaries.
// A maintenance window with equal start and end excludes nothing.
type SessionWindow struct {
	RTHStart         Clock
	RTHEnd           Clock
	MaintenanceStart Clock
	MaintenanceEnd   Clock
}

// DefaultWindow is 08:30-15:00 RTH with a 16:00-17:00 maintenance break.
func DefaultWindow() SessionWindow {
	return SessionWindow{
		RTHStart:         MustClock("08:30"),
		RTHEnd:           MustClock("15:00"),
		MaintenanceStart: MustClock("16:00"),
		MaintenanceEnd:   MustClock("17:00"),
	}
}

// Grid is an immutable session calendar in the venue's location.
type Grid struct {
	Window SessionWindow
	Block  time.Duration
	Loc    *time.Location
}

// New validates the window and returns a Grid.
func New(w SessionWindow, block time.Duration, loc *time.Location) (Grid, error) {
	if block <= 0 {
		return Grid{}, fmt.Errorf("block length must be positive, got %v", block)
	}
	if (24*time.Hour)%block != 0 {
		return Grid{}, fmt.Errorf("block length %v does not divide a day", block)
	}
	if w.RTHStart >= w.RTHEnd {
		return Grid{}, fmt.Errorf("rth_start %s must be before rth_end %s", w.RTHStart, w.RTHEnd)
	}
	if loc == nil {
		loc = time.UTC
	}
	return Grid{Window: w, Block: block, Loc: loc}, nil
}

// MustNew is New for known-good inputs.
func MustNew(w SessionWindow, block time.Duration, loc *time.Location) Grid {
	g, err := New(w, block, loc)
	if err != nil {
		panic(err)
	}
	return g
}

// AlignUp rounds t up to the next block boundary of its calendar day.
func (g Grid) AlignUp(t time.Time) time.Time {
	t = t.In(g.Loc)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, g.Loc)
	rem := t.Sub(midnight) % g.Block
	if rem == 0 {
		return t
	}
	return t.Add(g.Block - rem)
}

// InMaintenance reports whether t falls inside the maintenance window of its day.
func (g Grid) InMaintenance(t time.Time) bool {
	return g.maintenanceAt(ClockOf(t, g.Loc))
}

func (g Grid) maintenanceAt(c Clock) bool {
	s, e := g.Window.MaintenanceStart, g.Window.MaintenanceEnd
	if s == e {
		return false
	}
	if s < e {
		return c >= s && c < e
	}
	// window wraps midnight
	return c >= s || c < e
}

const fullDay = 24 * time.Hour

// BlocksBetween counts valid blocks in [AlignUp(start), end). A block whose
// midpoint is inside the maintenance window is never counted.
//
// Spans with a constant UTC offset are counted a whole day at a time, so the
// cost grows with the number of zone transitions rather than the span length.
func (g Grid) BlocksBetween(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	blocks := 0
	cur := g.AlignUp(start)
	for cur.Before(end) {
		limit := end
		if _, zoneEnd := cur.In(g.Loc).ZoneBounds(); !zoneEnd.IsZero() && zoneEnd.Before(limit) {
			limit = zoneEnd
		}
		if days := limit.Sub(cur) / fullDay; days > 0 {
			blocks += int(days) * g.blocksPerDay(ClockOf(cur, g.Loc))
			cur = cur.Add(days * fullDay)
		}
		for ; cur.Before(limit); cur = cur.Add(g.Block) {
			if !g.InMaintenance(cur.Add(g.Block / 2)) {
				blocks++
			}
		}
	}
	return blocks
}

// blocksPerDay counts the valid blocks in the 24 hours that follow a block
// starting at wall clock from, assuming the UTC offset does not change.
func (g Grid) blocksPerDay(from Clock) int {
	n := 0
	for off := time.Duration(0); off < fullDay; off += g.Block {
		mid := (time.Duration(from) + off + g.Block/2) % fullDay
		if !g.maintenanceAt(Clock(mid)) {
			n++
		}
	}
	return n
}

// RTHSlots returns every block time in [rth_start, rth_end) on day.
func (g Grid) RTHSlots(day time.Time) []time.Time {
	var slots []time.Time
	for c := g.Window.RTHStart; c < g.Window.RTHEnd; c += Clock(g.Block) {
		slots = append(slots, c.on(day, g.Loc))
	}
	return slots
}

// InRTH reports whether t is inside the regular trading hours of its day.
func (g Grid) InRTH(t time.Time) bool {
	c := ClockOf(t, g.Loc)
	return c >= g.Window.RTHStart && c < g.Window.RTHEnd
}

// SessionOpen returns the RTH start instant of day.
func (g Grid) SessionOpen(day time.Time) time.Time {
	return g.Window.RTHStart.on(day, g.Loc)
}

// SessionClose returns the RTH end instant of day.
func (g Grid) SessionClose(day time.Time) time.Time {
	return g.Window.RTHEnd.on(day, g.Loc)
}

// PreviousSession returns the prior weekday.
func (g Grid) PreviousSession(day time.Time) time.Time {
	d := day.In(g.Loc)
	d = time.Date(d.Year(), d.Month(), d.Day()-1, 0, 0, 0, 0, g.Loc)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = time.Date(d.Year(), d.Month(), d.Day()-1, 0, 0, 0, 0, g.Loc)
	}
	return d
}

// OvernightRange returns [prior session close, day open).
func (g Grid) OvernightRange(day time.Time) (from, to time.Time) {
	return g.SessionClose(g.PreviousSession(day)), g.SessionOpen(day)
}

// SessionBars keeps the bars of day that fall inside RTH.
func (g Grid) SessionBars(bars []model.Bar, day time.Time) []model.Bar {
	return Between(bars, g.SessionOpen(day), g.SessionClose(day))
}

// Between keeps bars with from <= Time < to. Order is preserved.
func Between(bars []model.Bar, from, to time.Time) []model.Bar {
	var out []model.Bar
	for _, b := range bars {
		if !b.Time.Before(from) && b.Time.Before(to) {
			out = append(out, b)
		}
	}
	return out
}
