package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Run is one recorded pipeline run.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Succeeded  int
	Failed     int
}

// RunOutcome is one recorded per-source result.
type RunOutcome struct {
	Title       string
	FeedURL     string
	Succeeded   bool
	Message     string
	StoragePath string
}

// History records run summaries in an embedded sqlite database.
type History struct {
	db *sql.DB
}

// OpenHistory opens (creating if needed) the history database at path and
// applies pending migrations.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

func runMigrations(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// RecordRun stores a run and its per-source outcomes atomically, returning
// the new run's id.
func (h *History) RecordRun(run Run, outcomes []RunOutcome) (int64, error) {
	tx, err := h.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO runs (started_at, finished_at, total, succeeded, failed)
		VALUES (?, ?, ?, ?, ?)`,
		run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Total, run.Succeeded, run.Failed)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get run id: %w", err)
	}

	for _, o := range outcomes {
		_, err := tx.Exec(`
			INSERT INTO run_outcomes (run_id, title, feed_url, succeeded, message, storage_path)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, o.Title, o.FeedURL, o.Succeeded, o.Message, o.StoragePath)
		if err != nil {
			return 0, fmt.Errorf("insert outcome for %s: %w", o.FeedURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit history transaction: %w", err)
	}
	return runID, nil
}

// RecentRuns returns up to limit runs, newest first.
func (h *History) RecentRuns(limit int) ([]Run, error) {
	rows, err := h.db.Query(`
		SELECT id, started_at, finished_at, total, succeeded, failed
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Total, &r.Succeeded, &r.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunOutcomes returns the recorded outcomes for one run, failures first.
func (h *History) RunOutcomes(runID int64) ([]RunOutcome, error) {
	rows, err := h.db.Query(`
		SELECT title, feed_url, succeeded, message, storage_path
		FROM run_outcomes WHERE run_id = ? ORDER BY succeeded, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []RunOutcome
	for rows.Next() {
		var o RunOutcome
		if err := rows.Scan(&o.Title, &o.FeedURL, &o.Succeeded, &o.Message, &o.StoragePath); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
