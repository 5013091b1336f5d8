package model

import "time"

// Bar represents a single fixed-cadence candlestick bar.
type Bar struct {
	Time  time.Time `json:"time"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// Bearish reports whether the bar closed below its open.
func (b Bar) Bearish() bool { return b.Close < b.Open }

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool { return b.Close > b.Open }

// BodyLow returns the lower edge of the candle body.
func (b Bar) BodyLow() float64 {
	if b.Open < b.Close {
		return b.Open
	}
	return b.Close
}

// BodyHigh returns the upper edge of the candle body.
func (b Bar) BodyHigh() float64 {
	if b.Open > b.Close {
		return b.Open
	}
	return b.Close
}

// SessionBars holds the three bar windows one evaluation day needs.
type SessionBars struct {
	Symbol    string
	Day       time.Time
	Prior     []Bar // prior session RTH, anchor source
	Overnight []Bar // prior close through projected open
	Session   []Bar // projected session RTH
}
