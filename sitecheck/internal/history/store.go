// Package history records completed runs in SQLite so regressions can be
// spotted across deployments.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hazyhaar/sitecheck/dbopen"
	"github.com/hazyhaar/sitecheck/sitecheck/finding"
)

// ErrNotFinalized is returned when Record is given a run still in progress.
var ErrNotFinalized = errors.New("history: run result is not finalized")

// Store is the run history database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the history database at path and applies the
// schema. The caller must blank-import modernc.org/sqlite.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	all := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, all...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Run is one row of the history: summary counters plus the full result.
type Run struct {
	ID         string
	Target     string
	StartedAt  int64
	DurationMs int64
	Passed     int
	Failed     int
	Images     int
	NavLinks   int
	Errors     int
	Warnings   int
	Result     *finding.RunResult
}

// OK reports whether the run had no failing Finding.
func (r Run) OK() bool { return r.Failed == 0 }

// Record stores a finalized run. Recording the same ID twice replaces the
// earlier row.
func (s *Store) Record(ctx context.Context, res *finding.RunResult) error {
	if !res.Finalized() {
		return ErrNotFinalized
	}
	data, err := finding.MarshalResult(res)
	if err != nil {
		return fmt.Errorf("history: encode: %w", err)
	}

	failed := len(res.Failures())
	_, err = s.DB.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, target, started_at, duration_ms, passed, failed,
			 images, nav_links, errors, warnings, result_json)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		res.ID, res.Target, res.StartedAt, res.DurationMs,
		len(res.Findings)-failed, failed,
		res.Images, res.NavLinks, len(res.Errors()), len(res.Warnings()),
		string(data),
	)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. limit <= 0 means 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, target, started_at, duration_ms, passed, failed,
		       images, nav_links, errors, warnings, result_json
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var data string
		if err := rows.Scan(&r.ID, &r.Target, &r.StartedAt, &r.DurationMs,
			&r.Passed, &r.Failed, &r.Images, &r.NavLinks, &r.Errors, &r.Warnings,
			&data); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		res, err := finding.UnmarshalResult([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("history: decode %s: %w", r.ID, err)
		}
		r.Result = res
		out = append(out, r)
	}
	return out, rows.Err()
}
