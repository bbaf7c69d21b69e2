package models

import (
	"errors"
	"strings"
	"time"
)

// DedupEntry is one persisted dedup log line.
type DedupEntry struct {
	id        string
	sequence  int
	key       string
	title     string
	createdAt time.Time
}

// NewDedupEntry creates an entry for title, deriving its key with [DedupKey].
func NewDedupEntry(title string) *DedupEntry {
	return &DedupEntry{key: DedupKey(title), title: title, createdAt: time.Now()}
}

func (e *DedupEntry) ID() string           { return e.id }
func (e *DedupEntry) Sequence() int        { return e.sequence }
func (e *DedupEntry) Key() string          { return e.key }
func (e *DedupEntry) Title() string        { return e.title }
func (e *DedupEntry) CreatedAt() time.Time { return e.createdAt }

func (e *DedupEntry) SetID(id string)           { e.id = id }
func (e *DedupEntry) SetSequence(seq int)       { e.sequence = seq }
func (e *DedupEntry) SetCreatedAt(at time.Time) { e.createdAt = at }

// Validate ensures the entry has a usable key.
func (e *DedupEntry) Validate() error {
	if strings.TrimSpace(e.key) == "" {
		return errors.New("dedup key is required")
	}
	if strings.ContainsAny(e.key, "\r\n") {
		return errors.New("dedup key must be a single line")
	}
	return nil
}

// RunRecord is the persisted summary of a [SyncReport].
type RunRecord struct {
	id           string
	sequence     int
	PlaylistID   string
	CursorPolicy string
	CatalogSize  int
	Inserted     int
	Failed       int
	CursorEnd    string
	Interrupted  bool
	StartedAt    time.Time
	FinishedAt   time.Time
}

// NewRunRecord condenses report into a record.
func NewRunRecord(report *SyncReport) *RunRecord {
	return &RunRecord{
		id:           report.ID,
		PlaylistID:   report.PlaylistID,
		CursorPolicy: report.CursorPolicy,
		CatalogSize:  report.CatalogSize,
		Inserted:     report.Inserted,
		Failed:       report.Failed,
		CursorEnd:    report.CursorEnd,
		Interrupted:  report.Interrupted,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
	}
}

func (r *RunRecord) ID() string           { return r.id }
func (r *RunRecord) Sequence() int        { return r.sequence }
func (r *RunRecord) CreatedAt() time.Time { return r.FinishedAt }

func (r *RunRecord) SetID(id string)     { r.id = id }
func (r *RunRecord) SetSequence(seq int) { r.sequence = seq }

// Validate checks the record before it is stored.
func (r *RunRecord) Validate() error {
	if r.id == "" {
		return errors.New("run id is required")
	}
	if r.FinishedAt.Before(r.StartedAt) {
		return errors.New("run finished before it started")
	}
	return nil
}
