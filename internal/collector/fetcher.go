package collector

import (
	"time"

	"Springboard/internal/model"
)

// Fetcher is the external market data source: it returns the bars of a
// symbol in [from, to), ordered by time.
type Fetcher interface {
	FetchBars(symbol string, from, to time.Time) ([]model.Bar, error)
	Name() string
}
