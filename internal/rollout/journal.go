package rollout

import (
	"database/sql"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Journal persists episode results to SQLite for analysis across runs.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// NewJournal opens (or creates) a SQLite journal database.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_sync=NORMAL")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS episodes (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		episode      INTEGER NOT NULL,
		policy       TEXT NOT NULL,
		steps        INTEGER NOT NULL,
		total_reward REAL NOT NULL,
		final_cash   REAL NOT NULL,
		final_owned  INTEGER NOT NULL,
		final_equity REAL NOT NULL,
		buys         INTEGER NOT NULL,
		sells        INTEGER NOT NULL,
		holds        INTEGER NOT NULL,
		started_at   DATETIME NOT NULL,
		duration_ms  INTEGER NOT NULL,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_episodes_policy ON episodes(policy);
	CREATE INDEX IF NOT EXISTS idx_episodes_started_at ON episodes(started_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[journal] opened episode journal at %s", dbPath)
	return &Journal{db: db}, nil
}

// RecordEpisode persists one episode result.
func (j *Journal) RecordEpisode(res EpisodeResult) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT INTO episodes (episode, policy, steps, total_reward, final_cash, final_owned,
		                       final_equity, buys, sells, holds, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Episode,
		res.Policy,
		res.Steps,
		res.TotalReward,
		res.FinalCash,
		res.FinalOwned,
		res.FinalEquity,
		res.Buys,
		res.Sells,
		res.Holds,
		res.StartedAt.Format(time.RFC3339),
		res.Duration.Milliseconds(),
	)
	return err
}

// EpisodeRecord represents a row from the episodes table.
type EpisodeRecord struct {
	ID          int64   `json:"id"`
	Episode     int     `json:"episode"`
	Policy      string  `json:"policy"`
	Steps       int     `json:"steps"`
	TotalReward float64 `json:"total_reward"`
	FinalEquity float64 `json:"final_equity"`
	StartedAt   string  `json:"started_at"`
}

// GetEpisodes returns the last N episode records, newest first.
func (j *Journal) GetEpisodes(limit int) ([]EpisodeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT id, episode, policy, steps, total_reward, final_equity, started_at
		 FROM episodes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EpisodeRecord
	for rows.Next() {
		var r EpisodeRecord
		if err := rows.Scan(&r.ID, &r.Episode, &r.Policy, &r.Steps,
			&r.TotalReward, &r.FinalEquity, &r.StartedAt); err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
