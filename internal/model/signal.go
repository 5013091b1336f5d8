package model

import "time"

// Touch classifies how a bar intersects a guide line.
type Touch string

const (
	TouchNone Touch = "none"
	TouchWick Touch = "wick"
	TouchBody Touch = "body"
)

// CloseRelation is the bar close relative to the line value.
type CloseRelation string

const (
	CloseAbove CloseRelation = "above"
	CloseBelow CloseRelation = "below"
	CloseEqual CloseRelation = "equal"
)

// SignalState is the per-row state of the arm/trigger machine.
type SignalState string

const (
	StateIdle           SignalState = "idle"
	StateArmedLong      SignalState = "armed-long"
	StateTriggeredLong  SignalState = "triggered-long"
	StateArmedShort     SignalState = "armed-short"
	StateTriggeredShort SignalState = "triggered-short"
)

// Armed reports whether the state is one of the armed states.
func (s SignalState) Armed() bool {
	return s == StateArmedLong || s == StateArmedShort
}

// Triggered reports whether the state is one of the triggered states.
func (s SignalState) Triggered() bool {
	return s == StateTriggeredLong || s == StateTriggeredShort
}

// ProjectionRow is the evaluation of one bar against one guide line.
type ProjectionRow struct {
	Time          time.Time     `json:"time"`
	LineValue     float64       `json:"line_value"`
	Open          float64       `json:"open"`
	High          float64       `json:"high"`
	Low           float64       `json:"low"`
	Close         float64       `json:"close"`
	Touch         Touch         `json:"touch"`
	CloseRelation CloseRelation `json:"close_relation"`
	SignalState   SignalState   `json:"signal_state"`
	Note          string        `json:"note,omitempty"`
	Entry         float64       `json:"entry,omitempty"`
	Stop          float64       `json:"stop,omitempty"`
}

// ProjectionPoint is a line value at one RTH slot of the projected day.
type ProjectionPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// LineResult carries everything produced for one guide line.
type LineResult struct {
	Line       GuideLine         `json:"line"`
	Projection []ProjectionPoint `json:"projection"`
	Rows       []ProjectionRow   `json:"rows"`
}

// Range is the high/low extent of a bar series.
type Range struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// Evaluation is the output of one engine run for one projected day.
type Evaluation struct {
	RunID          string       `json:"run_id"`
	Day            time.Time    `json:"day"`
	Anchors        []Anchor     `json:"anchors"`
	Lines          []LineResult `json:"lines"`
	OvernightGate  bool         `json:"overnight_gate"`
	PriorRange     *Range       `json:"prior_range,omitempty"`
	OvernightRange *Range       `json:"overnight_range,omitempty"`
}

// CountStates tallies signal states across every line.
func (e *Evaluation) CountStates() map[SignalState]int {
	counts := make(map[SignalState]int)
	for _, lr := range e.Lines {
		for _, r := range lr.Rows {
			counts[r.SignalState]++
		}
	}
	return counts
}
