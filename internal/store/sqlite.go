package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"Springboard/internal/model"
)

// SQLiteStore keeps bars keyed by (symbol, timestamp) in a SQLite database.
// It is the local stand-in for the external market data source.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the API can read while the ingester writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: log.With().Str("component", "store").Logger(),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.logger.Info().Str("path", dbPath).Msg("sqlite bar store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		// price columns stay nullable so rows written by external tools with
		// gaps surface as schema errors instead of failing the insert
		`CREATE TABLE IF NOT EXISTS bars (
			symbol TEXT    NOT NULL,
			ts     INTEGER NOT NULL,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			PRIMARY KEY (symbol, ts)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

// InsertBars writes bars for symbol in one transaction. A bar whose
// timestamp is already stored fails the whole batch.
func (s *SQLiteStore) InsertBars(symbol string, bars []model.Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO bars (symbol, ts, open, high, low, close) VALUES (?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range bars {
		if _, err := stmt.Exec(symbol, b.Time.Unix(), b.Open, b.High, b.Low, b.Close); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert bar %d (%s): %w", i, b.Time.UTC().Format(time.RFC3339), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("bars inserted")
	return nil
}

// FetchBars returns the bars of symbol in [from, to) ordered by time.
func (s *SQLiteStore) FetchBars(symbol string, from, to time.Time) ([]model.Bar, error) {
	rows, err := s.db.Query(`SELECT ts, open, high, low, close FROM bars
		WHERE symbol = ? AND ts >= ? AND ts < ? ORDER BY ts`,
		symbol, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var (
			ts                     int64
			open, high, low, close sql.NullFloat64
		)
		if err := rows.Scan(&ts, &open, &high, &low, &close); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		t := time.Unix(ts, 0).UTC()
		for _, f := range []struct {
			name string
			v    sql.NullFloat64
		}{
			{"open", open}, {"high", high}, {"low", low}, {"close", close},
		} {
			if !f.v.Valid {
				return nil, &model.SchemaError{Index: len(bars), Time: t, Field: f.name}
			}
		}
		bars = append(bars, model.Bar{
			Time:  t,
			Open:  open.Float64,
			High:  high.Float64,
			Low:   low.Float64,
			Close: close.Float64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	return bars, nil
}

func (s *SQLiteStore) Close() error {
	s.logger.Info().Msg("closing sqlite bar store")
	return s.db.Close()
}
