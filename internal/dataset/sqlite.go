package dataset

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"stocksim/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteReader provides read-only access to a SQLite bar archive.
type SQLiteReader struct {
	db *sql.DB
}

// NewSQLiteReader opens a SQLite connection for reading.
func NewSQLiteReader(dbPath string) (*SQLiteReader, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("dataset: sqlite open: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	log.Printf("[dataset] opened sqlite archive %s", dbPath)
	return &SQLiteReader{db: db}, nil
}

// ReadBars reads the bar series for a symbol from the bars table, ordered by
// timestamp ascending. afterTS filters to bars strictly after the given Unix
// timestamp (0 = all).
func (r *SQLiteReader) ReadBars(symbol string, afterTS int64) ([]model.Bar, error) {
	rows, err := r.db.Query(`
		SELECT ts, open, high, low, close, volume
		FROM bars
		WHERE symbol = ? AND ts > ?
		ORDER BY ts ASC
	`, symbol, afterTS)
	if err != nil {
		return nil, fmt.Errorf("dataset: sqlite query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		var tsUnix int64
		if err := rows.Scan(&tsUnix, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("dataset: sqlite scan bars: %w", err)
		}
		b.TS = time.Unix(tsUnix, 0).UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := model.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("dataset: sqlite symbol %s: %w", symbol, err)
	}
	return bars, nil
}

// Close closes the reader.
func (r *SQLiteReader) Close() error {
	return r.db.Close()
}
