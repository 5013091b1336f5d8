package notifier

import (
	"strings"
	"testing"
	"time"

	"Springboard/internal/model"
)

var ct = time.FixedZone("CT", -6*3600)

func sampleEvaluation() *model.Evaluation {
	line := model.GuideLine{
		AnchorLabel:   "A1",
		AnchorTime:    time.Date(2025, 1, 1, 11, 30, 0, 0, ct),
		AnchorPrice:   6185.80,
		SlopePerBlock: -0.25,
		Kind:          model.LineEntry,
	}
	return &model.Evaluation{
		RunID: "run",
		Day:   time.Date(2025, 1, 2, 0, 0, 0, 0, ct),
		Anchors: []model.Anchor{{
			Label: "A1", Time: line.AnchorTime, Price: 6185.80,
			NUsed: 1, MUsed: 2, ConfirmTime: time.Date(2025, 1, 1, 13, 0, 0, 0, ct),
		}},
		Lines: []model.LineResult{{
			Line: line,
			Projection: []model.ProjectionPoint{
				{Time: time.Date(2025, 1, 2, 8, 30, 0, 0, ct), Value: 6175.80},
				{Time: time.Date(2025, 1, 2, 14, 30, 0, 0, ct), Value: 6172.80},
			},
			Rows: []model.ProjectionRow{
				{Time: time.Date(2025, 1, 2, 8, 30, 0, 0, ct), LineValue: 6175.80, SignalState: model.StateArmedLong},
				{Time: time.Date(2025, 1, 2, 9, 0, 0, 0, ct), LineValue: 6175.55, SignalState: model.StateTriggeredLong, Entry: 6176.10, Stop: 6174.70},
				{Time: time.Date(2025, 1, 2, 9, 30, 0, 0, ct), LineValue: 6175.30, SignalState: model.StateIdle},
			},
		}},
	}
}

func TestFormatSignalReport(t *testing.T) {
	msg := FormatSignalReport(sampleEvaluation())
	for _, want := range []string{
		"2025-01-02",
		"Armed long 1 | Triggered long 1",
		"08:30 A1/entry line 6175.80: armed-long",
		"09:00 A1/entry line 6175.55: triggered-long entry 6176.10 stop 6174.70",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("report missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "09:30") {
		t.Errorf("idle rows should be omitted:\n%s", msg)
	}
}

func TestFormatSignalReport_NoSignals(t *testing.T) {
	ev := sampleEvaluation()
	ev.Lines[0].Rows = nil
	if msg := FormatSignalReport(ev); !strings.Contains(msg, "No signals.") {
		t.Errorf("expected no-signal notice:\n%s", msg)
	}
}

func TestFormatProjectionReport(t *testing.T) {
	ev := sampleEvaluation()
	ev.PriorRange = &model.Range{High: 6190.25, Low: 6170}
	msg := FormatProjectionReport(ev)
	for _, want := range []string{
		"Prior session: H 6190.25 L 6170.00",
		"A1: 6185.80 @ 01-01 11:30 (N=1 M=2, confirmed 01-01 13:00)",
		"A1/entry (-0.25/block): 08:30 6175.80 → 14:30 6172.80",
		"Overnight below all lines: false",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("report missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatAnchors_Empty(t *testing.T) {
	ev := sampleEvaluation()
	ev.Anchors = nil
	if msg := FormatAnchors(ev); !strings.Contains(msg, "No anchors") {
		t.Errorf("expected empty notice:\n%s", msg)
	}
}
