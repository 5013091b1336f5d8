package model

import "time"

// Anchor is a qualifying high used as the origin of guide lines.
type Anchor struct {
	Label       string    `json:"label"`
	Time        time.Time `json:"time"`
	Price       float64   `json:"price"`
	NUsed       int       `json:"n_used"`
	MUsed       int       `json:"m_used"`
	ConfirmTime time.Time `json:"confirm_time"`
	Manual      bool      `json:"manual,omitempty"`
}

// ManualAnchor is a caller-supplied anchor that bypasses detection.
type ManualAnchor struct {
	Label string    `json:"label"`
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// LineKind distinguishes the descending entry line from its ascending mirror.
type LineKind string

const (
	LineEntry LineKind = "entry"
	LineExit  LineKind = "exit"
)

// GuideLine is a price level moving linearly per block from an anchor.
type GuideLine struct {
	AnchorLabel   string    `json:"anchor_label"`
	AnchorTime    time.Time `json:"anchor_time"`
	AnchorPrice   float64   `json:"anchor_price"`
	SlopePerBlock float64   `json:"slope_per_block"`
	Kind          LineKind  `json:"kind"`
}

// ID returns a stable identifier such as "A1/entry".
func (l GuideLine) ID() string {
	return l.AnchorLabel + "/" + string(l.Kind)
}
