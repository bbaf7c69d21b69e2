package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/likesync/internal/models"
)

// RunRepository implements [models.Repository] for [models.RunRecord] persistence.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a finished run. The ID comes from the report.
func (r *RunRepository) Create(run *models.RunRecord) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO sync_runs (
			id, sequence, playlist_id, cursor_policy, catalog_size, inserted, failed,
			cursor_end, interrupted, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID(), sequence, run.PlaylistID, run.CursorPolicy, run.CatalogSize, run.Inserted, run.Failed,
		run.CursorEnd, run.Interrupted, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	run.SetSequence(sequence)
	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.RunRecord, error) {
	query := `
		SELECT id, sequence, playlist_id, cursor_policy, catalog_size, inserted, failed,
			cursor_end, interrupted, started_at, finished_at
		FROM sync_runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return run, nil
}

// List returns runs newest first.
//
// Supported criteria: "playlist_id" (string) and "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.RunRecord, error) {
	query := `
		SELECT id, sequence, playlist_id, cursor_policy, catalog_size, inserted, failed,
			cursor_end, interrupted, started_at, finished_at
		FROM sync_runs
		WHERE 1 = 1
	`

	args := []any{}

	if playlistID, ok := criteria["playlist_id"].(string); ok && playlistID != "" {
		query += " AND playlist_id = ?"
		args = append(args, playlistID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func scanRun(row rowScanner) (*models.RunRecord, error) {
	var (
		id       string
		sequence int
		run      models.RunRecord
	)

	err := row.Scan(
		&id, &sequence, &run.PlaylistID, &run.CursorPolicy, &run.CatalogSize, &run.Inserted, &run.Failed,
		&run.CursorEnd, &run.Interrupted, &run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return &run, nil
}
