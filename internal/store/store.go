// Package store persists render job snapshots in a local sqlite database so
// job history survives restarts.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/AndrewPopesku/aive/internal/render"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the sqlite-backed job journal. It satisfies render.Journal.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at dbPath and applies migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc.org/sqlite works best with a single writer connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	s := &Store{conn: conn, logger: logger}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	migrations, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	for _, m := range migrations {
		if m.IsDir() {
			continue
		}
		name := m.Name()
		if s.isMigrationApplied(name) {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		if _, err := s.conn.Exec("INSERT INTO _migrations (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", name, err)
		}
		if s.logger != nil {
			s.logger.Info("applied migration", "name", name)
		}
	}
	return nil
}

func (s *Store) isMigrationApplied(name string) bool {
	var exists int
	err := s.conn.QueryRow("SELECT 1 FROM sqlite_master WHERE type='table' AND name='_migrations'").Scan(&exists)
	if err != nil {
		return false
	}
	var applied int
	err = s.conn.QueryRow("SELECT 1 FROM _migrations WHERE name = ?", name).Scan(&applied)
	return err == nil && applied == 1
}

// RecordJob upserts a job snapshot. The queue calls this on submission and on
// every state transition.
func (s *Store) RecordJob(snap render.Snapshot) error {
	meta := "{}"
	if len(snap.Metadata) > 0 {
		raw, err := json.Marshal(snap.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode job metadata: %w", err)
		}
		meta = string(raw)
	}

	_, err := s.conn.Exec(`
		INSERT INTO jobs (id, output_path, status, created_at, started_at, completed_at, duration, progress, error, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			duration = excluded.duration,
			progress = excluded.progress,
			error = excluded.error,
			metadata = excluded.metadata`,
		snap.ID, snap.OutputPath, string(snap.Status), snap.CreatedAt,
		snap.StartedAt, snap.CompletedAt, snap.Duration, snap.Progress, snap.Error, meta,
	)
	if err != nil {
		return fmt.Errorf("failed to record job %s: %w", snap.ID, err)
	}
	return nil
}

const jobColumns = "id, output_path, status, created_at, started_at, completed_at, duration, progress, error, metadata"

func scanJob(row interface{ Scan(...any) error }) (render.Snapshot, error) {
	var snap render.Snapshot
	var status string
	var started, completed sql.NullString
	var duration sql.NullFloat64
	var meta string

	err := row.Scan(&snap.ID, &snap.OutputPath, &status, &snap.CreatedAt,
		&started, &completed, &duration, &snap.Progress, &snap.Error, &meta)
	if err != nil {
		return render.Snapshot{}, err
	}

	snap.Status = render.Status(status)
	if started.Valid {
		snap.StartedAt = &started.String
	}
	if completed.Valid {
		snap.CompletedAt = &completed.String
	}
	if duration.Valid {
		snap.Duration = &duration.Float64
	}
	if meta != "" && meta != "{}" {
		if err := json.Unmarshal([]byte(meta), &snap.Metadata); err != nil {
			return render.Snapshot{}, fmt.Errorf("failed to decode job metadata: %w", err)
		}
	}
	return snap, nil
}

// GetJob returns the stored snapshot for id. The boolean reports existence.
func (s *Store) GetJob(ctx context.Context, id string) (render.Snapshot, bool, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	snap, err := scanJob(row)
	if err == sql.ErrNoRows {
		return render.Snapshot{}, false, nil
	}
	if err != nil {
		return render.Snapshot{}, false, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	return snap, true, nil
}

// ListJobs returns all stored jobs in submission order.
func (s *Store) ListJobs(ctx context.Context) ([]render.Snapshot, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM jobs ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var out []render.Snapshot
	for rows.Next() {
		snap, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// DeleteJob removes the stored snapshot for id.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	_, err := s.conn.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id)
	return err
}

// ClearTerminal deletes completed, failed and cancelled jobs and returns how
// many rows were removed.
func (s *Store) ClearTerminal(ctx context.Context) (int64, error) {
	res, err := s.conn.ExecContext(ctx,
		"DELETE FROM jobs WHERE status IN ('completed', 'failed', 'cancelled')")
	if err != nil {
		return 0, fmt.Errorf("failed to clear terminal jobs: %w", err)
	}
	return res.RowsAffected()
}

// MarkInterrupted fails every job that was pending or running when the
// process last exited. Called once at startup.
func (s *Store) MarkInterrupted(ctx context.Context) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE jobs SET status = 'failed', error = 'interrupted by restart'
		WHERE status IN ('pending', 'running')`)
	if err != nil {
		return 0, fmt.Errorf("failed to mark interrupted jobs: %w", err)
	}
	return res.RowsAffected()
}

var _ render.Journal = (*Store)(nil)
