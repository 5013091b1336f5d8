package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"Springboard/internal/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBars(start time.Time, n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		p := 6180 + float64(i)
		bars[i] = model.Bar{
			Time:  start.Add(time.Duration(i) * 30 * time.Minute),
			Open:  p,
			High:  p + 1,
			Low:   p - 1,
			Close: p + 0.5,
		}
	}
	return bars
}

func TestSQLiteStore_RoundTripRange(t *testing.T) {
	s := openTestStore(t)
	start := time.Date(2025, 1, 2, 14, 30, 0, 0, time.UTC)
	bars := sampleBars(start, 6)
	if err := s.InsertBars("SPX", bars); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.InsertBars("ES", sampleBars(start, 2)); err != nil {
		t.Fatalf("insert other symbol: %v", err)
	}

	got, err := s.FetchBars("SPX", bars[1].Time, bars[4].Time)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 bars in [1,4), got %d", len(got))
	}
	for i, b := range got {
		want := bars[i+1]
		if !b.Time.Equal(want.Time) || b.Close != want.Close || b.Low != want.Low {
			t.Errorf("bar %d = %+v, want %+v", i, b, want)
		}
	}
}

func TestSQLiteStore_DuplicateRejected(t *testing.T) {
	s := openTestStore(t)
	bars := sampleBars(time.Date(2025, 1, 2, 14, 30, 0, 0, time.UTC), 2)
	if err := s.InsertBars("SPX", bars); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.InsertBars("SPX", bars[1:]); err == nil {
		t.Error("expected duplicate timestamp to fail")
	}
	got, err := s.FetchBars("SPX", bars[0].Time, bars[1].Time.Add(time.Hour))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 bars after rejected batch, got %d", len(got))
	}
}

func TestSQLiteStore_NullPriceIsSchemaError(t *testing.T) {
	s := openTestStore(t)
	ts := time.Date(2025, 1, 2, 14, 30, 0, 0, time.UTC)
	if _, err := s.db.Exec(`INSERT INTO bars (symbol, ts, open, high, low, close) VALUES (?,?,?,?,?,NULL)`,
		"SPX", ts.Unix(), 1.0, 2.0, 0.5); err != nil {
		t.Fatalf("raw insert: %v", err)
	}
	_, err := s.FetchBars("SPX", ts, ts.Add(time.Hour))
	var schemaErr *model.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Field != "close" || schemaErr.Index != 0 {
		t.Errorf("unexpected error detail %+v", schemaErr)
	}
}
