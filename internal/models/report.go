package models

import "time"

// TrackStatus records what happened to one catalog track during a run.
type TrackStatus string

const (
	StatusBeforeCursor TrackStatus = "before-cursor" // passed over while seeking the cursor
	StatusAlreadyAdded TrackStatus = "already-added" // identity found in the dedup set
	StatusNoMatch      TrackStatus = "no-match"
	StatusInserted     TrackStatus = "inserted"
	StatusDuplicate    TrackStatus = "duplicate" // matched video title already inserted
	StatusInsertFailed TrackStatus = "insert-failed"
)

// TrackOutcome is the per-track line of a [SyncReport].
type TrackOutcome struct {
	Track  Track       `json:"track"`
	Status TrackStatus `json:"status"`
	Match  *Match      `json:"match,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// SyncReport summarizes a single sync run.
type SyncReport struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Destination  string    `json:"destination"`
	PlaylistID   string    `json:"playlist_id"`
	CursorPolicy string    `json:"cursor_policy"`
	CatalogSize  int       `json:"catalog_size"`
	CursorStart  string    `json:"cursor_start,omitempty"`
	CursorEnd    string    `json:"cursor_end,omitempty"`
	CursorFound  bool      `json:"cursor_found"`
	Interrupted  bool      `json:"interrupted"`

	BeforeCursor int `json:"before_cursor"`
	AlreadyAdded int `json:"already_added"`
	NoMatch      int `json:"no_match"`
	Inserted     int `json:"inserted"`
	Duplicates   int `json:"duplicates"`
	Failed       int `json:"failed"`

	Outcomes []TrackOutcome `json:"outcomes"`
}

// Record appends outcome and bumps the matching counter.
//
// Tracks passed over while seeking are counted but not listed.
func (r *SyncReport) Record(outcome TrackOutcome) {
	switch outcome.Status {
	case StatusBeforeCursor:
		r.BeforeCursor++
		return
	case StatusAlreadyAdded:
		r.AlreadyAdded++
	case StatusNoMatch:
		r.NoMatch++
	case StatusInserted:
		r.Inserted++
	case StatusDuplicate:
		r.Duplicates++
	case StatusInsertFailed:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, outcome)
}

// Processed is the number of tracks handled after the cursor.
func (r *SyncReport) Processed() int {
	return r.AlreadyAdded + r.NoMatch + r.Inserted + r.Duplicates + r.Failed
}

// Duration is the wall time of the run, or zero while it is still running.
func (r *SyncReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
