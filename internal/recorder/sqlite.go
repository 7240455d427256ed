package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id              TEXT PRIMARY KEY,
			timestamp       INTEGER NOT NULL,
			duration_ms     INTEGER,
			status          TEXT NOT NULL,
			error           TEXT,
			window_days     INTEGER,
			top_n           INTEGER,
			total_attempted INTEGER,
			stocks_screened INTEGER,
			skipped_count   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS run_rankings (
			run_id    TEXT NOT NULL REFERENCES runs(id),
			rank      INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			name      TEXT,
			price     REAL,
			sma       REAL,
			rsl       REAL,
			prev_rank INTEGER,
			PRIMARY KEY (run_id, rank)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_symbol ON run_rankings(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run and its top-N rows in one transaction.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var window, topN, attempted, screened, skipped int
	if s := run.Snapshot; s != nil {
		window, topN = s.Window, s.TopN
		attempted, screened, skipped = s.TotalAttempted, s.StocksScreened, s.SkippedCount
	}
	if _, err := tx.Exec(`INSERT INTO runs
		(id, timestamp, duration_ms, status, error, window_days, top_n,
		 total_attempted, stocks_screened, skipped_count)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.Duration.Milliseconds(), string(run.Status), run.Error,
		window, topN, attempted, screened, skipped,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if run.Snapshot != nil {
		for _, e := range run.Snapshot.Entries {
			var prev sql.NullInt64
			if e.PrevRank != nil {
				prev = sql.NullInt64{Int64: int64(*e.PrevRank), Valid: true}
			}
			if _, err := tx.Exec(`INSERT INTO run_rankings
				(run_id, rank, symbol, name, price, sma, rsl, prev_rank)
				VALUES (?,?,?,?,?,?,?,?)`,
				run.ID, e.Rank, e.Symbol, e.Name, e.Price, e.SMA, e.RSL, prev,
			); err != nil {
				return fmt.Errorf("insert ranking %s: %w", e.Symbol, err)
			}
		}
	}
	return tx.Commit()
}

// RecentRuns returns the latest runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT
			r.id, r.timestamp, r.duration_ms, r.status, COALESCE(r.error, ''),
			r.total_attempted, r.stocks_screened, r.skipped_count,
			COALESCE(k.symbol, ''), COALESCE(k.rsl, 0)
		FROM runs r
		LEFT JOIN run_rankings k ON k.run_id = r.id AND k.rank = 1
		ORDER BY r.timestamp DESC, r.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			s         RunSummary
			ts, durMs int64
			status    string
		)
		if err := rows.Scan(&s.ID, &ts, &durMs, &status, &s.Error,
			&s.TotalAttempted, &s.StocksScreened, &s.SkippedCount,
			&s.TopSymbol, &s.TopRSL); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.Unix(ts, 0)
		s.Duration = time.Duration(durMs) * time.Millisecond
		s.Status = RunStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
