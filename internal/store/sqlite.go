package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/listmirror/internal/model"
	"github.com/nhle/listmirror/internal/period"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// IsClosed reports whether the given period of a list has been
// permanently closed. Closed periods are never fetched again.
func (s *SQLiteStore) IsClosed(
	ctx context.Context,
	list string,
	p period.Period,
) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM closed_periods WHERE list = ? AND year = ? AND month = ?",
		list, p.Year, int(p.Month),
	)
	if err != nil {
		return false, fmt.Errorf("checking closed period %s of %s: %w", p, list, err)
	}
	return count > 0, nil
}

// MarkClosed records that a period of a list is settled and must never
// be fetched again. Marking an already-closed period is a no-op.
func (s *SQLiteStore) MarkClosed(
	ctx context.Context,
	list string,
	p period.Period,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO closed_periods (list, year, month, closed_at)
		VALUES (?, ?, ?, ?)`,
		list, p.Year, int(p.Month), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("closing period %s of %s: %w", p, list, err)
	}
	return nil
}

// RecordRun appends a sync-run journal entry. Generates a UUID if the
// run has no ID.
func (s *SQLiteStore) RecordRun(ctx context.Context, run model.SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs (
			id, list, started_at, finished_at,
			units_fetched, units_changed, rebuilt
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.List, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.UnitsFetched, run.UnitsChanged, boolToInt(run.Rebuilt),
	)
	if err != nil {
		return fmt.Errorf("recording run for %s: %w", run.List, err)
	}
	return nil
}

// LastRun retrieves the most recent sync-run entry for a list, or nil
// when the list has never been processed.
func (s *SQLiteStore) LastRun(
	ctx context.Context,
	list string,
) (*model.SyncRun, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT id, list, started_at, finished_at,
		       units_fetched, units_changed, rebuilt
		FROM sync_runs WHERE list = ?
		ORDER BY started_at DESC LIMIT 1`,
		list,
	)

	var (
		run     model.SyncRun
		rebuilt int
	)
	err := row.Scan(
		&run.ID, &run.List, &run.StartedAt, &run.FinishedAt,
		&run.UnitsFetched, &run.UnitsChanged, &rebuilt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting last run for %s: %w", list, err)
	}

	run.Rebuilt = rebuilt != 0
	return &run, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
