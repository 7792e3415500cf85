package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/andresuchdata/shopmetrics/internal/engine"
)

// RunRepository tracks engine runs so reruns and monitoring can see what
// already happened for a date.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// CreateRun inserts a new run record and fills in its ID.
func (r *RunRepository) CreateRun(ctx context.Context, run *engine.Run) error {
	query := `
		INSERT INTO engine_runs (
			engine_name, date, status, total_records,
			violations, started_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx, query,
		run.EngineName, run.Date, run.Status, run.TotalRecords,
		run.Violations, run.StartedAt,
	).Scan(&run.ID)

	return err
}

// UpdateRun updates an existing run record.
func (r *RunRepository) UpdateRun(ctx context.Context, run *engine.Run) error {
	query := `
		UPDATE engine_runs
		SET status = $1, total_records = $2, violations = $3,
		    started_at = $4, completed_at = $5, error_message = $6
		WHERE id = $7
	`

	_, err := r.db.ExecContext(
		ctx, query,
		run.Status, run.TotalRecords, run.Violations,
		run.StartedAt, run.CompletedAt, run.ErrorMessage, run.ID,
	)

	return err
}

// GetRunByDate retrieves the run for an engine and date, nil when none exists.
func (r *RunRepository) GetRunByDate(ctx context.Context, engineName string, date time.Time) (*engine.Run, error) {
	query := `
		SELECT id, engine_name, date, status, total_records,
		       violations, started_at, completed_at, error_message
		FROM engine_runs
		WHERE engine_name = $1 AND date = $2
		ORDER BY started_at DESC
		LIMIT 1
	`

	run := &engine.Run{}
	var errMsg sql.NullString
	err := r.db.QueryRowContext(ctx, query, engineName, date).Scan(
		&run.ID, &run.EngineName, &run.Date, &run.Status,
		&run.TotalRecords, &run.Violations,
		&run.StartedAt, &run.CompletedAt, &errMsg,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.ErrorMessage = errMsg.String
	return run, nil
}

// GetRecentRuns lists the latest runs across all dates, newest first.
func (r *RunRepository) GetRecentRuns(ctx context.Context, limit int) ([]*engine.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, engine_name, date, status, total_records,
		       violations, started_at, completed_at, error_message
		FROM engine_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*engine.Run
	for rows.Next() {
		run := &engine.Run{}
		var errMsg sql.NullString
		if err := rows.Scan(
			&run.ID, &run.EngineName, &run.Date, &run.Status,
			&run.TotalRecords, &run.Violations,
			&run.StartedAt, &run.CompletedAt, &errMsg,
		); err != nil {
			return nil, err
		}
		run.ErrorMessage = errMsg.String
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
