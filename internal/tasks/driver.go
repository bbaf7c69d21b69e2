package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/state"
)

// CursorPolicy decides which processed tracks move the resume cursor.
type CursorPolicy int

const (
	// PolicyOnMatch advances whenever a video was found, whatever the insert outcome.
	PolicyOnMatch CursorPolicy = iota
	// PolicyOnInsert advances only when the video is in the playlist afterwards.
	PolicyOnInsert
	// PolicyAlways advances after every processed track.
	PolicyAlways
)

func (p CursorPolicy) String() string {
	switch p {
	case PolicyOnMatch:
		return "on-match"
	case PolicyOnInsert:
		return "on-insert"
	case PolicyAlways:
		return "always"
	default:
		return ""
	}
}

// ParseCursorPolicy maps a config value to a policy. Empty means [PolicyOnMatch].
func ParseCursorPolicy(s string) (CursorPolicy, error) {
	switch s {
	case "", "on-match":
		return PolicyOnMatch, nil
	case "on-insert":
		return PolicyOnInsert, nil
	case "always":
		return PolicyAlways, nil
	default:
		return 0, fmt.Errorf("%w: cursor policy %q", shared.ErrInvalidArgument, s)
	}
}

// advances reports whether a processed track with status moves the cursor under p.
func (p CursorPolicy) advances(status models.TrackStatus) bool {
	switch status {
	case models.StatusInserted, models.StatusDuplicate:
		return true
	case models.StatusInsertFailed:
		return p != PolicyOnInsert
	case models.StatusNoMatch, models.StatusAlreadyAdded:
		return p == PolicyAlways
	default:
		return false
	}
}

// SeekState is the driver's position relative to the saved cursor.
type SeekState int

const (
	// SeekingCursor skips tracks up to and including the cursor track.
	SeekingCursor SeekState = iota
	// Processing handles every remaining track.
	Processing
)

func (s SeekState) String() string {
	switch s {
	case SeekingCursor:
		return "seeking"
	case Processing:
		return "processing"
	default:
		return ""
	}
}

// advance is the seek transition for one track.
//
// The cursor track itself is never processed again.
func advance(s SeekState, cursor, identity string) (next SeekState, process bool) {
	switch {
	case s == Processing:
		return Processing, true
	case identity == cursor:
		return Processing, false
	default:
		return SeekingCursor, false
	}
}

// DriverOpts configures a [Driver].
type DriverOpts struct {
	Catalog        services.CatalogSource
	Platform       services.VideoPlatform
	Store          state.Store
	PlaylistID     string
	Policy         CursorPolicy
	InsertDelay    time.Duration
	SearchInterval time.Duration
	Logger         *log.Logger
}

// Driver runs one pass of the sync loop.
type Driver struct {
	opts   DriverOpts
	logger *log.Logger
}

// NewDriver creates a Driver. A nil Logger discards log output.
func NewDriver(opts DriverOpts) *Driver {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Driver{opts: opts, logger: logger}
}

// Run syncs the catalog into the destination playlist.
//
// Catalog and state failures abort the run. Search and insert failures are recorded per track.
// When ctx is cancelled the loop stops between tracks and the partial report is returned with ctx.Err().
func (d *Driver) Run(ctx context.Context, progress chan<- ProgressUpdate) (*models.SyncReport, error) {
	report := &models.SyncReport{
		ID:           shared.GenerateID(),
		StartedAt:    time.Now(),
		Destination:  d.opts.Platform.Name(),
		PlaylistID:   d.opts.PlaylistID,
		CursorPolicy: d.opts.Policy.String(),
		Outcomes:     []models.TrackOutcome{},
	}
	defer func() { report.FinishedAt = time.Now() }()

	dedup, err := d.opts.Store.LoadDedupSet()
	if err != nil {
		return report, fmt.Errorf("failed to load dedup set: %w", err)
	}
	cursor, hasCursor, err := d.opts.Store.LoadCursor()
	if err != nil {
		return report, fmt.Errorf("failed to load cursor: %w", err)
	}
	report.CursorStart = cursor
	report.CursorEnd = cursor
	d.sendProgress(progress, loadStateUpdate(state.BackendName(d.opts.Store), len(dedup), cursor))

	d.sendProgress(progress, fetchingCatalogUpdate(d.opts.Catalog.Name()))
	tracks, err := d.opts.Catalog.LikedTracks(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to fetch liked tracks: %w", err)
	}
	report.CatalogSize = len(tracks)
	d.sendProgress(progress, fetchedCatalogUpdate(d.opts.Catalog.Name(), len(tracks)))

	matcher := NewMatcher(d.opts.Platform, d.opts.SearchInterval, d.logger)
	writer := NewPlaylistWriter(d.opts.Platform, d.opts.Store, dedup, d.opts.PlaylistID, d.opts.InsertDelay, d.logger)

	seek := Processing
	if hasCursor {
		seek = SeekingCursor
		d.logger.Info("Resuming", "cursor", cursor)
	}
	report.CursorFound = !hasCursor

	total := len(tracks)
	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			report.Interrupted = true
			return report, err
		}

		var process bool
		wasSeeking := seek == SeekingCursor
		seek, process = advance(seek, cursor, track.Identity())
		if !process {
			report.Record(models.TrackOutcome{Track: track, Status: models.StatusBeforeCursor})
			if wasSeeking && seek == Processing {
				report.CursorFound = true
				d.sendProgress(progress, seekCursorUpdate(i+1, total, true))
			}
			continue
		}

		d.sendProgress(progress, searchTrackUpdate(i+1, total, track))
		outcome, err := d.processTrack(ctx, matcher, writer, dedup, track)
		if err != nil {
			if !isCancel(ctx, err) {
				return report, err
			}
			if outcome.Status != models.StatusInserted {
				report.Interrupted = true
				return report, err
			}
		}

		report.Record(outcome)
		if d.opts.Policy.advances(outcome.Status) {
			if serr := d.opts.Store.SaveCursor(track.Identity()); serr != nil {
				return report, fmt.Errorf("failed to save cursor: %w", serr)
			}
			report.CursorEnd = track.Identity()
		}
		d.sendProgress(progress, trackOutcomeUpdate(i+1, total, outcome))

		if err != nil {
			report.Interrupted = true
			return report, err
		}
	}

	if seek == SeekingCursor {
		d.logger.Warn("Saved cursor is not in the catalog; nothing processed", "cursor", cursor, "tracks", total)
		d.sendProgress(progress, seekCursorUpdate(total, total, false))
	}

	if err := ctx.Err(); err != nil {
		report.Interrupted = true
		return report, err
	}
	d.sendProgress(progress, completeUpdate(report))
	return report, nil
}

// processTrack handles one track after the cursor.
//
// A returned error is either a state write failure or a cancellation.
// After a cancellation only an inserted outcome is kept.
func (d *Driver) processTrack(ctx context.Context, matcher *Matcher, writer *PlaylistWriter, dedup models.DedupSet, track models.Track) (models.TrackOutcome, error) {
	outcome := models.TrackOutcome{Track: track}

	if dedup.Has(track.Identity()) {
		d.logger.Info("Already added", "track", track.Identity())
		outcome.Status = models.StatusAlreadyAdded
		return outcome, nil
	}

	match, err := matcher.Search(ctx, track)
	if err != nil {
		if isCancel(ctx, err) {
			return outcome, err
		}
		outcome.Status = models.StatusNoMatch
		outcome.Error = err.Error()
		return outcome, nil
	}
	if match == nil {
		outcome.Status = models.StatusNoMatch
		return outcome, nil
	}
	outcome.Match = match

	result, err := writer.Insert(ctx, match)
	switch result {
	case models.Inserted:
		outcome.Status = models.StatusInserted
	case models.SkippedDuplicate:
		outcome.Status = models.StatusDuplicate
	default:
		outcome.Status = models.StatusInsertFailed
		outcome.Error = "insert failed"
	}
	return outcome, err
}

func isCancel(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// sendProgress sends an update without blocking. Dropped updates are fine.
func (d *Driver) sendProgress(ch chan<- ProgressUpdate, update ProgressUpdate) {
	if ch == nil {
		return
	}
	select {
	case ch <- update:
	default:
	}
}
