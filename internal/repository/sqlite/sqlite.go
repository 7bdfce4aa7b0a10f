package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fluidnet/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.SolveJournal using SQLite
type Repository struct {
	db *sql.DB
}

// New opens (creating if needed) the journal database at dbPath.
// ":memory:" gives a private in-memory journal.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases coherent and serializes writers
	db.SetMaxOpenConns(1)

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure database: %w", err)
		}
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS solves (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		status TEXT NOT NULL,
		severity TEXT NOT NULL,
		message TEXT,
		unreachable INTEGER NOT NULL DEFAULT 0,
		components INTEGER NOT NULL DEFAULT 0,
		connections INTEGER NOT NULL DEFAULT 0,
		overlays INTEGER NOT NULL DEFAULT 0,
		request_digest TEXT,
		result JSON
	);

	CREATE INDEX IF NOT EXISTS idx_solves_finished ON solves(finished_at);
	CREATE INDEX IF NOT EXISTS idx_solves_status ON solves(status);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close releases the database
func (r *Repository) Close() error {
	return r.db.Close()
}

// RecordSolve inserts a journal entry
func (r *Repository) RecordSolve(ctx context.Context, rec *domain.SolveRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("solve record has no id")
	}
	result, err := marshalResult(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO solves (`+solveColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.StartedAt.UnixNano(),
		rec.FinishedAt.UnixNano(),
		string(rec.Status),
		string(rec.Severity),
		stringToNull(rec.Message),
		boolToInt(rec.Unreachable),
		rec.Components,
		rec.Connections,
		rec.Overlays,
		stringToNull(rec.RequestDigest),
		result,
	)
	if err != nil {
		return fmt.Errorf("failed to insert solve %s: %w", rec.ID, err)
	}
	return nil
}

// GetSolve returns one journal entry, or nil if absent
func (r *Repository) GetSolve(ctx context.Context, id string) (*domain.SolveRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+solveColumns+` FROM solves WHERE id = ?`, id)

	var sr solveRow
	if err := row.Scan(sr.scanArgs()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get solve %s: %w", id, err)
	}
	return sr.toDomain()
}

// ListSolves returns up to limit entries, most recently finished first.
// A limit <= 0 returns every entry.
func (r *Repository) ListSolves(ctx context.Context, limit int) ([]domain.SolveRecord, error) {
	query := `SELECT ` + solveColumns + ` FROM solves ORDER BY finished_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query solves: %w", err)
	}
	defer rows.Close()

	records := []domain.SolveRecord{}
	for rows.Next() {
		var sr solveRow
		if err := rows.Scan(sr.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan solve: %w", err)
		}
		rec, err := sr.toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode solve %s: %w", sr.ID, err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating solves: %w", err)
	}
	return records, nil
}

// LastSolve returns the most recently finished entry, or nil if none
func (r *Repository) LastSolve(ctx context.Context) (*domain.SolveRecord, error) {
	records, err := r.ListSolves(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}
