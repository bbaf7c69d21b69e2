package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CursorRepository stores the resume cursor in the single-row sync_cursor table.
type CursorRepository struct {
	db *sql.DB
}

// NewCursorRepository creates a new [CursorRepository] with the given database connection
func NewCursorRepository(db *sql.DB) *CursorRepository {
	return &CursorRepository{db: db}
}

// Get returns the stored identity. ok is false when no cursor has been saved yet.
func (r *CursorRepository) Get() (identity string, updatedAt time.Time, ok bool, err error) {
	err = r.db.QueryRow("SELECT identity, updated_at FROM sync_cursor WHERE id = 1").Scan(&identity, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("failed to query cursor: %w", err)
	}
	return identity, updatedAt, true, nil
}

// Set overwrites the cursor with identity.
func (r *CursorRepository) Set(identity string) error {
	query := `
		INSERT INTO sync_cursor (id, identity, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET identity = excluded.identity, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, identity, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save cursor: %w", err)
	}
	return nil
}
