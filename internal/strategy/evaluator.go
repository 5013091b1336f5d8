package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"Springboard/internal/model"
	"Springboard/internal/projector"
	"Springboard/internal/timegrid"
)

type direction int

const (
	long direction = iota
	short
)

// rearmState is the per-line, per-direction reuse bookkeeping of one scan.
type rearmState struct {
	cooldown [2]int
	used     [2]bool
}

func (r *rearmState) eligible(d direction, p SignalParams) bool {
	if !p.AllowReuse {
		return !r.used[d]
	}
	return r.cooldown[d] == 0
}

func (r *rearmState) arm(d direction, p SignalParams) {
	r.used[d] = true
	r.cooldown[d] = p.RearmAfterBars
}

func (r *rearmState) tick(d direction) {
	if r.cooldown[d] > 0 {
		r.cooldown[d]--
	}
}

// EvaluateLine scans bars in chronological order against one line and
// returns one row per bar. Shorts are considered only when the overnight
// gate is open and the configuration asks for it.
func EvaluateLine(g timegrid.Grid, line model.GuideLine, bars []model.Bar, p SignalParams, gate bool) []model.ProjectionRow {
	rows := make([]model.ProjectionRow, len(bars))
	shortsEnabled := p.ShortRequiresBelowAllOvernight && gate
	var rs rearmState

	for i, b := range bars {
		lv := projector.Value(g, line, b.Time)
		touch := classifyTouch(b, lv, p)
		rel := closeRelation(b.Close, lv)

		state := model.StateIdle
		switch {
		case rs.eligible(long, p) && b.Bearish() && touch != model.TouchNone && rel == model.CloseAbove:
			state = model.StateArmedLong
			rs.arm(long, p)
		case shortsEnabled && rs.eligible(short, p) && b.Bullish() && touch != model.TouchNone && rel == model.CloseBelow:
			state = model.StateArmedShort
			rs.arm(short, p)
		}
		if state != model.StateArmedLong {
			rs.tick(long)
		}
		if state != model.StateArmedShort {
			rs.tick(short)
		}

		rows[i] = model.ProjectionRow{
			Time:          b.Time,
			LineValue:     lv,
			Open:          b.Open,
			High:          b.High,
			Low:           b.Low,
			Close:         b.Close,
			Touch:         touch,
			CloseRelation: rel,
			SignalState:   state,
		}
		if state.Armed() {
			rows[i].Note = armNote(state, touch, rel, lv)
		}
	}

	propagateTriggers(rows, p.StopMargin)
	return rows
}

func classifyTouch(b model.Bar, lv float64, p SignalParams) model.Touch {
	if lv < b.Low-p.TouchTolerance || lv > b.High+p.TouchTolerance {
		return model.TouchNone
	}
	if lv >= b.BodyLow()-p.BodyTolerance && lv <= b.BodyHigh()+p.BodyTolerance {
		return model.TouchBody
	}
	return model.TouchWick
}

func closeRelation(close, lv float64) model.CloseRelation {
	switch {
	case close > lv:
		return model.CloseAbove
	case close < lv:
		return model.CloseBelow
	default:
		return model.CloseEqual
	}
}

// propagateTriggers upgrades the row after every armed row. States are read
// after any earlier upgrade, so an armed row that was itself overwritten does
// not trigger its successor.
func propagateTriggers(rows []model.ProjectionRow, margin float64) {
	m := decimal.NewFromFloat(margin)
	for i := 0; i+1 < len(rows); i++ {
		armed, next := &rows[i], &rows[i+1]
		switch armed.SignalState {
		case model.StateArmedLong:
			stop := decimal.NewFromFloat(armed.Low).Sub(m)
			next.SignalState = model.StateTriggeredLong
			next.Entry = next.Open
			next.Stop = stop.InexactFloat64()
			next.Note = fmt.Sprintf("long trigger: entry near %s, stop below %s (armed %s low %s - %s)",
				price(next.Open), stop.StringFixed(2), armed.Time.Format("15:04"), price(armed.Low), m.StringFixed(2))
		case model.StateArmedShort:
			stop := decimal.NewFromFloat(armed.High).Add(m)
			next.SignalState = model.StateTriggeredShort
			next.Entry = next.Open
			next.Stop = stop.InexactFloat64()
			next.Note = fmt.Sprintf("short trigger: entry near %s, stop above %s (armed %s high %s + %s)",
				price(next.Open), stop.StringFixed(2), armed.Time.Format("15:04"), price(armed.High), m.StringFixed(2))
		}
	}
}

func armNote(state model.SignalState, touch model.Touch, rel model.CloseRelation, lv float64) string {
	return fmt.Sprintf("%s: %s touch of %s, close %s", state, touch, price(lv), rel)
}

func price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
