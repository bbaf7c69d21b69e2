package state

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/shared"
)

// SQLiteStore keeps sync state in the sync_cursor and dedup_titles tables and records each run in sync_runs.
type SQLiteStore struct {
	db      *sql.DB
	owned   bool
	cursors *repositories.CursorRepository
	dedup   *repositories.DedupRepository
	runs    *repositories.RunRepository
}

// NewSQLiteStore wraps an already migrated database. The caller keeps ownership of db.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:      db,
		cursors: repositories.NewCursorRepository(db),
		dedup:   repositories.NewDedupRepository(db),
		runs:    repositories.NewRunRepository(db),
	}
}

// OpenSQLiteStore opens and migrates the database described by cfg. Close releases it.
func OpenSQLiteStore(cfg shared.DatabaseConfig) (*SQLiteStore, error) {
	db, err := shared.OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}

	s := NewSQLiteStore(db)
	s.owned = true
	return s, nil
}

func (s *SQLiteStore) LoadCursor() (string, bool, error) {
	identity, _, ok, err := s.cursors.Get()
	if err != nil {
		return "", false, err
	}
	return identity, ok, nil
}

func (s *SQLiteStore) SaveCursor(identity string) error {
	if err := s.cursors.Set(identity); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStateWrite, err)
	}
	return nil
}

func (s *SQLiteStore) LoadDedupSet() (models.DedupSet, error) {
	keys, err := s.dedup.Keys()
	if err != nil {
		return nil, err
	}
	return models.NewDedupSet(keys...), nil
}

func (s *SQLiteStore) AppendDedup(title string) error {
	if err := s.dedup.Create(models.NewDedupEntry(title)); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStateWrite, err)
	}
	return nil
}

// RecordRun stores the summary of report.
func (s *SQLiteStore) RecordRun(report *models.SyncReport) error {
	return s.runs.Create(models.NewRunRecord(report))
}

// Runs returns up to limit recorded runs, newest first.
func (s *SQLiteStore) Runs(limit int) ([]*models.RunRecord, error) {
	return s.runs.List(map[string]any{"limit": limit})
}

func (s *SQLiteStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
