package api

import (
	"fmt"
	"time"

	"Springboard/internal/model"
)

// wireBar keeps every field optional so an absent value is reported as a
// schema error rather than decoded as zero.
type wireBar struct {
	Time  *time.Time `json:"time"`
	Open  *float64   `json:"open"`
	High  *float64   `json:"high"`
	Low   *float64   `json:"low"`
	Close *float64   `json:"close"`
}

type evaluateRequest struct {
	Day       string               `json:"day" binding:"required"`
	Prior     []wireBar            `json:"prior"`
	Overnight []wireBar            `json:"overnight"`
	Session   []wireBar            `json:"session"`
	Anchors   []model.ManualAnchor `json:"anchors"`
	Labels    []string             `json:"labels"`
}

type lineThroughRequest struct {
	Label string    `json:"label"`
	T1    time.Time `json:"t1"`
	P1    float64   `json:"p1"`
	T2    time.Time `json:"t2"`
	P2    float64   `json:"p2"`
	// Day, when set, adds the projection table for that day.
	Day string `json:"day"`
}

func toBars(series string, in []wireBar) ([]model.Bar, error) {
	bars := make([]model.Bar, len(in))
	for i, w := range in {
		if w.Time == nil {
			return nil, fmt.Errorf("%s: %w", series, &model.SchemaError{Index: i, Field: "time"})
		}
		for _, f := range []struct {
			name string
			v    *float64
		}{
			{"open", w.Open}, {"high", w.High}, {"low", w.Low}, {"close", w.Close},
		} {
			if f.v == nil {
				return nil, fmt.Errorf("%s: %w", series, &model.SchemaError{Index: i, Time: *w.Time, Field: f.name})
			}
		}
		bars[i] = model.Bar{Time: *w.Time, Open: *w.Open, High: *w.High, Low: *w.Low, Close: *w.Close}
	}
	return bars, nil
}
