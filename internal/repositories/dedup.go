package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// DedupRepository implements [models.Repository] for [models.DedupEntry] persistence.
type DedupRepository struct {
	db *sql.DB
}

// NewDedupRepository creates a new [DedupRepository] with the given database connection
func NewDedupRepository(db *sql.DB) *DedupRepository {
	return &DedupRepository{db: db}
}

// Create appends entry with a generated ID and sequence.
//
// An entry whose key already exists is left alone and the call succeeds, so the log never holds a key twice.
func (r *DedupRepository) Create(entry *models.DedupEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if existing, err := r.GetByKey(entry.Key()); err == nil && existing != nil {
		entry.SetID(existing.ID())
		entry.SetSequence(existing.Sequence())
		return nil
	}

	sequence, err := NextSequence(r.db, "dedup_titles")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO dedup_titles (id, dedup_key, title, sequence, added_at) VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, entry.Key(), entry.Title(), sequence, entry.CreatedAt())
	if isUniqueViolation(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to insert dedup entry: %w", err)
	}

	entry.SetID(id)
	entry.SetSequence(sequence)
	return nil
}

// Get retrieves an entry by ID
func (r *DedupRepository) Get(id string) (*models.DedupEntry, error) {
	return r.getOne("id", id)
}

// GetByKey retrieves an entry by its normalized key
func (r *DedupRepository) GetByKey(key string) (*models.DedupEntry, error) {
	return r.getOne("dedup_key", key)
}

func (r *DedupRepository) getOne(column, value string) (*models.DedupEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, sequence, dedup_key, title, added_at
		FROM dedup_titles
		WHERE %s = ?
	`, column)

	entry, err := scanDedupEntry(r.db.QueryRow(query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dedup entry not found: %s", value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dedup entry: %w", err)
	}
	return entry, nil
}

// List retrieves entries in insertion order.
//
// Supported criteria: "after_sequence" (int) returns only entries appended after that sequence.
func (r *DedupRepository) List(criteria map[string]any) ([]*models.DedupEntry, error) {
	query := `
		SELECT id, sequence, dedup_key, title, added_at
		FROM dedup_titles
		WHERE 1 = 1
	`

	args := []any{}

	if after, ok := criteria["after_sequence"].(int); ok {
		query += " AND sequence > ?"
		args = append(args, after)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dedup entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.DedupEntry
	for rows.Next() {
		entry, err := scanDedupEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dedup entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Keys returns every stored key.
func (r *DedupRepository) Keys() ([]string, error) {
	rows, err := r.db.Query("SELECT dedup_key FROM dedup_titles ORDER BY sequence ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query dedup keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan dedup key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDedupEntry(row rowScanner) (*models.DedupEntry, error) {
	var (
		id       string
		sequence int
		key      string
		title    string
		addedAt  time.Time
	)

	if err := row.Scan(&id, &sequence, &key, &title, &addedAt); err != nil {
		return nil, err
	}

	entry := models.NewDedupEntry(title)
	entry.SetID(id)
	entry.SetSequence(sequence)
	entry.SetCreatedAt(addedAt)
	return entry, nil
}
