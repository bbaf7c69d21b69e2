package tasks

import (
	"fmt"

	"github.com/desertthunder/likesync/internal/models"
)

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadState Phase = iota
	FetchCatalog
	SeekCursor
	SearchTrack
	InsertTrack
	Complete
)

func (p Phase) String() string {
	switch p {
	case LoadState:
		return "load_state"
	case FetchCatalog:
		return "fetch_catalog"
	case SeekCursor:
		return "seek_cursor"
	case SearchTrack:
		return "search_track"
	case InsertTrack:
		return "insert_track"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func loadStateUpdate(backend string, dedup int, cursor string) ProgressUpdate {
	msg := fmt.Sprintf("Loaded %s state: %d added titles, no cursor", backend, dedup)
	if cursor != "" {
		msg = fmt.Sprintf("Loaded %s state: %d added titles, resuming after %q", backend, dedup, cursor)
	}
	return ProgressUpdate{
		Phase:   LoadState,
		Step:    1,
		Total:   1,
		Message: msg,
	}
}

func fetchingCatalogUpdate(source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCatalog,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching liked songs from %s...", source),
	}
}

func fetchedCatalogUpdate(source string, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d liked songs from %s", total, source),
	}
}

func seekCursorUpdate(step, total int, found bool) ProgressUpdate {
	msg := fmt.Sprintf("Cursor found after %d tracks", step)
	if !found {
		msg = fmt.Sprintf("Cursor not found in %d tracks", total)
	}
	return ProgressUpdate{
		Phase:   SeekCursor,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func searchTrackUpdate(step, total int, tr models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, tr.Identity()),
		Data:    tr,
	}
}

func trackOutcomeUpdate(step, total int, outcome models.TrackOutcome) ProgressUpdate {
	var msg string
	switch outcome.Status {
	case models.StatusInserted:
		msg = fmt.Sprintf("[%d/%d] ✓ %s", step, total, outcome.Match.VideoTitle)
	case models.StatusDuplicate:
		msg = fmt.Sprintf("[%d/%d] = %s (already in playlist)", step, total, outcome.Match.VideoTitle)
	case models.StatusInsertFailed:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, outcome.Track.Identity(), outcome.Error)
	case models.StatusNoMatch:
		msg = fmt.Sprintf("[%d/%d] ? %s (no match)", step, total, outcome.Track.Identity())
	default:
		msg = fmt.Sprintf("[%d/%d] - %s (%s)", step, total, outcome.Track.Identity(), outcome.Status)
	}
	return ProgressUpdate{
		Phase:   InsertTrack,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    outcome,
	}
}

func completeUpdate(report *models.SyncReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    report.CatalogSize,
		Total:   report.CatalogSize,
		Message: fmt.Sprintf("Done: %d inserted, %d duplicates, %d no match, %d failed", report.Inserted, report.Duplicates, report.NoMatch, report.Failed),
		Data:    report,
	}
}
