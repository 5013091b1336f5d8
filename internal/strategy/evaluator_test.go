package strategy

import (
	"math"
	"strings"
	"testing"
	"time"

	"Springboard/internal/model"
	"Springboard/internal/timegrid"
)

var ct = time.FixedZone("CT", -6*3600)

func testGrid() timegrid.Grid {
	return timegrid.MustNew(timegrid.DefaultWindow(), timegrid.DefaultBlock, ct)
}

func scenarioLine() model.GuideLine {
	return model.GuideLine{
		AnchorLabel:   "A1",
		AnchorTime:    time.Date(2025, 1, 1, 11, 30, 0, 0, ct),
		AnchorPrice:   6185.80,
		SlopePerBlock: -0.25,
		Kind:          model.LineEntry,
	}
}

func flatLine(price float64) model.GuideLine {
	return model.GuideLine{
		AnchorLabel: "F",
		AnchorTime:  time.Date(2025, 1, 2, 8, 0, 0, 0, ct),
		AnchorPrice: price,
		Kind:        model.LineEntry,
	}
}

// barsFrom lays quadruples on a 30 minute cadence starting at start.
func barsFrom(start time.Time, ohlc ...[4]float64) []model.Bar {
	bars := make([]model.Bar, len(ohlc))
	for i, q := range ohlc {
		bars[i] = model.Bar{
			Time:  start.Add(time.Duration(i) * 30 * time.Minute),
			Open:  q[0],
			High:  q[1],
			Low:   q[2],
			Close: q[3],
		}
	}
	return bars
}

func states(rows []model.ProjectionRow) []model.SignalState {
	out := make([]model.SignalState, len(rows))
	for i, r := range rows {
		out[i] = r.SignalState
	}
	return out
}

func TestEvaluateLine_ArmThenTrigger(t *testing.T) {
	bars := barsFrom(time.Date(2025, 1, 1, 21, 30, 0, 0, ct),
		[4]float64{6182.00, 6182.00, 6181.00, 6181.50},
		[4]float64{6181.80, 6182.50, 6181.40, 6182.20},
	)
	rows := EvaluateLine(testGrid(), scenarioLine(), bars, DefaultSignalParams(), false)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	armed := rows[0]
	if math.Abs(armed.LineValue-6181.30) > 1e-9 {
		t.Errorf("line value = %v, want 6181.30", armed.LineValue)
	}
	if armed.Touch != model.TouchWick {
		t.Errorf("touch = %s, want wick", armed.Touch)
	}
	if armed.CloseRelation != model.CloseAbove {
		t.Errorf("close relation = %s, want above", armed.CloseRelation)
	}
	if armed.SignalState != model.StateArmedLong {
		t.Errorf("state = %s, want armed-long", armed.SignalState)
	}

	trig := rows[1]
	if trig.SignalState != model.StateTriggeredLong {
		t.Fatalf("state = %s, want triggered-long", trig.SignalState)
	}
	if trig.Entry != 6181.80 {
		t.Errorf("entry = %v, want 6181.80", trig.Entry)
	}
	if math.Abs(trig.Stop-6180.20) > 1e-9 {
		t.Errorf("stop = %v, want 6180.20", trig.Stop)
	}
	if !strings.Contains(trig.Note, "6181.80") || !strings.Contains(trig.Note, "6180.20") {
		t.Errorf("note %q should cite entry and stop", trig.Note)
	}
}

func TestEvaluateLine_IgnoredShapes(t *testing.T) {
	p := DefaultSignalParams()
	tests := []struct {
		name string
		bar  [4]float64
		gate bool
	}{
		{"bullish closing above", [4]float64{6181.00, 6182.00, 6180.90, 6181.60}, true},
		{"bearish closing below", [4]float64{6181.60, 6181.80, 6180.50, 6181.00}, true},
		{"bearish above without touch", [4]float64{6184.00, 6184.50, 6183.00, 6183.50}, false},
		{"doji on the line", [4]float64{6181.30, 6181.50, 6181.00, 6181.30}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := barsFrom(time.Date(2025, 1, 2, 9, 0, 0, 0, ct), tt.bar)
			rows := EvaluateLine(testGrid(), flatLine(6181.30), bars, p, tt.gate)
			if rows[0].SignalState != model.StateIdle {
				t.Errorf("state = %s, want idle", rows[0].SignalState)
			}
		})
	}
}

func TestEvaluateLine_TouchClassification(t *testing.T) {
	p := DefaultSignalParams()
	tests := []struct {
		name string
		bar  [4]float64
		want model.Touch
	}{
		{"inside body", [4]float64{6182.00, 6182.50, 6180.50, 6181.00}, model.TouchBody},
		{"lower wick", [4]float64{6182.00, 6182.00, 6181.00, 6181.50}, model.TouchWick},
		{"within tolerance below low", [4]float64{6182.50, 6182.80, 6181.70, 6182.00}, model.TouchWick},
		{"beyond tolerance", [4]float64{6183.00, 6183.50, 6182.00, 6182.50}, model.TouchNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := barsFrom(time.Date(2025, 1, 2, 9, 0, 0, 0, ct), tt.bar)
			rows := EvaluateLine(testGrid(), flatLine(6181.30), bars, p, false)
			if rows[0].Touch != tt.want {
				t.Errorf("touch = %s, want %s", rows[0].Touch, tt.want)
			}
		})
	}
}

func TestEvaluateLine_ShortNeedsGate(t *testing.T) {
	bars := barsFrom(time.Date(2025, 1, 2, 9, 0, 0, 0, ct),
		[4]float64{6180.50, 6181.50, 6180.20, 6181.00},
		[4]float64{6180.90, 6181.20, 6180.00, 6180.40},
	)
	p := DefaultSignalParams()

	rows := EvaluateLine(testGrid(), flatLine(6181.30), bars, p, false)
	if got := states(rows); got[0] != model.StateIdle || got[1] != model.StateIdle {
		t.Fatalf("closed gate should suppress shorts, got %v", got)
	}

	rows = EvaluateLine(testGrid(), flatLine(6181.30), bars, p, true)
	if rows[0].SignalState != model.StateArmedShort {
		t.Fatalf("state = %s, want armed-short", rows[0].SignalState)
	}
	if rows[1].SignalState != model.StateTriggeredShort {
		t.Fatalf("state = %s, want triggered-short", rows[1].SignalState)
	}
	if rows[1].Entry != 6180.90 || math.Abs(rows[1].Stop-6182.30) > 1e-9 {
		t.Errorf("entry/stop = %v/%v, want 6180.90/6182.30", rows[1].Entry, rows[1].Stop)
	}

	p.ShortRequiresBelowAllOvernight = false
	rows = EvaluateLine(testGrid(), flatLine(6181.30), bars, p, true)
	if rows[0].SignalState != model.StateIdle {
		t.Errorf("disabled shorts should stay idle, got %s", rows[0].SignalState)
	}
}

func TestEvaluateLine_Rearm(t *testing.T) {
	arming := [4]float64{6182.00, 6182.00, 6181.00, 6181.50}
	bars := barsFrom(time.Date(2025, 1, 2, 8, 30, 0, 0, ct), arming, arming, arming, arming, arming, arming)

	A, T, I := model.StateArmedLong, model.StateTriggeredLong, model.StateIdle
	tests := []struct {
		name   string
		reuse  bool
		rearm  int
		expect []model.SignalState
	}{
		{"cooldown of two bars", true, 2, []model.SignalState{A, T, I, A, T, I}},
		{"no cooldown", true, 0, []model.SignalState{A, T, A, T, A, T}},
		{"single use", false, 2, []model.SignalState{A, T, I, I, I, I}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultSignalParams()
			p.AllowReuse = tt.reuse
			p.RearmAfterBars = tt.rearm
			got := states(EvaluateLine(testGrid(), flatLine(6181.30), bars, p, false))
			for i := range got {
				if got[i] != tt.expect[i] {
					t.Fatalf("states = %v, want %v", got, tt.expect)
				}
			}
		})
	}
}

func TestEvaluateLine_TriggeredOnlyAfterArmed(t *testing.T) {
	bars := barsFrom(time.Date(2025, 1, 2, 8, 30, 0, 0, ct),
		[4]float64{6182.00, 6182.00, 6181.00, 6181.50},
		[4]float64{6181.80, 6182.50, 6181.40, 6182.20},
		[4]float64{6180.50, 6181.50, 6180.20, 6181.00},
		[4]float64{6180.90, 6181.20, 6180.00, 6180.40},
		[4]float64{6181.00, 6182.00, 6180.90, 6181.60},
		[4]float64{6182.00, 6182.50, 6180.50, 6181.00},
		[4]float64{6181.90, 6182.00, 6181.10, 6181.40},
	)
	rows := EvaluateLine(testGrid(), flatLine(6181.30), bars, DefaultSignalParams(), true)
	if rows[0].SignalState.Triggered() {
		t.Fatal("first row cannot be triggered")
	}
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1].SignalState, rows[i].SignalState
		if (cur == model.StateTriggeredLong) != (prev == model.StateArmedLong) {
			t.Errorf("row %d: %s after %s", i, cur, prev)
		}
		if (cur == model.StateTriggeredShort) != (prev == model.StateArmedShort) {
			t.Errorf("row %d: %s after %s", i, cur, prev)
		}
	}
}

func TestEvaluateLine_Empty(t *testing.T) {
	if rows := EvaluateLine(testGrid(), flatLine(1), nil, DefaultSignalParams(), true); len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}
