package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/amir-mohammad-HP/cronwatch/internal/job"
	"github.com/amir-mohammad-HP/cronwatch/internal/types"
	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// SQLiteStore keeps one row per job; Save rewrites the table in one
// transaction so the stored order always matches the registry.
type SQLiteStore struct {
	db  *sql.DB
	log logger.Logger
}

func OpenSQLite(cfg types.StoreConfig, log logger.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &SQLiteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, jobs []job.Job) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM jobs`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO jobs(position, name, schedule, enabled, payload, created_at, last_run, next_run, last_error, run_count, fail_count)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, j := range jobs {
		r := ToRecord(j)
		if _, err := stmt.ExecContext(ctx,
			i, r.Name, r.Schedule, r.Enabled, nullStr(r.Payload), r.CreatedAt,
			nullStr(r.LastRun), r.NextRun, nullStr(r.LastError), r.RunCount, r.FailCount,
		); err != nil {
			return fmt.Errorf("insert %q: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Load(ctx context.Context) ([]job.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, schedule, enabled, payload, created_at, last_run, next_run, last_error, run_count, fail_count
		 FROM jobs ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var payload, lastRun, lastErr sql.NullString
		if err := rows.Scan(&r.Name, &r.Schedule, &r.Enabled, &payload, &r.CreatedAt,
			&lastRun, &r.NextRun, &lastErr, &r.RunCount, &r.FailCount); err != nil {
			return nil, err
		}
		r.Payload = payload.String
		r.LastRun = lastRun.String
		r.LastError = lastErr.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	jobs, err := fromRecords(records)
	s.log.Debug("loaded %d jobs from sqlite", len(jobs))
	return jobs, err
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
