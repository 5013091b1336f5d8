package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"Springboard/internal/model"
)

func price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func clock(ev *model.Evaluation, t time.Time) string {
	return t.In(ev.Day.Location()).Format("15:04")
}

// FormatAnchors lists the anchors of an evaluation.
func FormatAnchors(ev *model.Evaluation) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📍 <b>Anchors</b> | %s\n\n", ev.Day.Format("2006-01-02")))
	if len(ev.Anchors) == 0 {
		b.WriteString("No anchors qualified in the prior session.\n")
		return b.String()
	}
	for _, a := range ev.Anchors {
		src := fmt.Sprintf("N=%d M=%d, confirmed %s", a.NUsed, a.MUsed, a.ConfirmTime.In(ev.Day.Location()).Format("01-02 15:04"))
		if a.Manual {
			src = "manual"
		}
		b.WriteString(fmt.Sprintf("  %s: %s @ %s (%s)\n",
			a.Label, price(a.Price), a.Time.In(ev.Day.Location()).Format("01-02 15:04"), src))
	}
	return b.String()
}

// FormatProjectionReport is the pre-open report: anchors, the overnight gate
// and each line's value at the session open and close slots.
func FormatProjectionReport(ev *model.Evaluation) string {
	var b strings.Builder
	b.WriteString(FormatAnchors(ev))
	if ev.PriorRange != nil {
		b.WriteString(fmt.Sprintf("\nPrior session: H %s L %s", price(ev.PriorRange.High), price(ev.PriorRange.Low)))
	}
	if ev.OvernightRange != nil {
		b.WriteString(fmt.Sprintf("\nOvernight: H %s L %s", price(ev.OvernightRange.High), price(ev.OvernightRange.Low)))
	}
	b.WriteString(fmt.Sprintf("\n🌙 Overnight below all lines: %v\n", ev.OvernightGate))
	if len(ev.Lines) == 0 {
		return b.String()
	}

	b.WriteString("\n📐 <b>Projected lines:</b>\n")
	for _, lr := range ev.Lines {
		if len(lr.Projection) == 0 {
			continue
		}
		first, last := lr.Projection[0], lr.Projection[len(lr.Projection)-1]
		b.WriteString(fmt.Sprintf("  %s (%+.2f/block): %s %s → %s %s\n",
			lr.Line.ID(), lr.Line.SlopePerBlock,
			clock(ev, first.Time), price(first.Value),
			clock(ev, last.Time), price(last.Value)))
	}
	return b.String()
}

// FormatSignalReport is the post-close report of armed and triggered rows.
func FormatSignalReport(ev *model.Evaluation) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Springboard signals</b> | %s\n\n", ev.Day.Format("2006-01-02")))

	counts := ev.CountStates()
	b.WriteString(fmt.Sprintf("Armed long %d | Triggered long %d | Armed short %d | Triggered short %d\n",
		counts[model.StateArmedLong], counts[model.StateTriggeredLong],
		counts[model.StateArmedShort], counts[model.StateTriggeredShort]))
	b.WriteString(fmt.Sprintf("Overnight below all lines: %v\n", ev.OvernightGate))

	found := false
	for _, lr := range ev.Lines {
		for _, r := range lr.Rows {
			if r.SignalState == model.StateIdle {
				continue
			}
			if !found {
				b.WriteString("\n")
				found = true
			}
			b.WriteString(fmt.Sprintf("  %s %s line %s: %s", clock(ev, r.Time), lr.Line.ID(), price(r.LineValue), r.SignalState))
			if r.SignalState.Triggered() {
				b.WriteString(fmt.Sprintf(" entry %s stop %s", price(r.Entry), price(r.Stop)))
			}
			b.WriteString("\n")
		}
	}
	if !found {
		b.WriteString("\nNo signals.\n")
	}
	return b.String()
}
