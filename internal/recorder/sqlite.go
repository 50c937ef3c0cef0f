package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run outcomes to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecast_runs (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL UNIQUE,
			timestamp         INTEGER NOT NULL,
			ticker            TEXT NOT NULL,
			source            TEXT,
			start_date        TEXT,
			seed              INTEGER,
			num_simulations   INTEGER,
			horizon_days      INTEGER,
			observations      INTEGER,
			mean_daily_return REAL,
			daily_std_dev     REAL,
			start_price       REAL,
			prob_above_start  REAL,
			terminal_mean     REAL,
			terminal_median   REAL,
			terminal_p05      REAL,
			terminal_p95      REAL,
			terminal_min      REAL,
			terminal_max      REAL,
			charts            TEXT,
			render_error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON forecast_runs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ticker ON forecast_runs(ticker)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.Summary == nil {
		return fmt.Errorf("record run %s: missing summary", rec.RunID)
	}
	sum := rec.Summary
	st := sum.Stats

	_, err := r.db.Exec(`INSERT INTO forecast_runs
		(run_id, timestamp, ticker, source, start_date, seed,
		 num_simulations, horizon_days, observations,
		 mean_daily_return, daily_std_dev, start_price, prob_above_start,
		 terminal_mean, terminal_median, terminal_p05, terminal_p95, terminal_min, terminal_max,
		 charts, render_error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, time.Now().Unix(), rec.Ticker, rec.Source, rec.StartDate.Format("2006-01-02"), int64(rec.Seed),
		rec.Config.NumSimulations, rec.Config.HorizonDays, rec.Stats.Observations,
		rec.Stats.MeanDailyReturn, rec.Stats.DailyReturnStdDev, sum.StartPrice, sum.ProbabilityAboveStart,
		st.Mean, st.Median, st.P05, st.P95, st.Min, st.Max,
		strings.Join(rec.Charts, ","), rec.RenderError,
	)
	return err
}

// CountRuns returns the number of journaled runs for ticker.
func (r *SQLiteRecorder) CountRuns(ticker string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM forecast_runs WHERE ticker = ?`, ticker).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
