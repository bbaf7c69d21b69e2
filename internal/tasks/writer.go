package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/state"
)

// PlaylistWriter inserts matched videos into one playlist, never twice by title.
type PlaylistWriter struct {
	platform   services.VideoPlatform
	store      state.Store
	dedup      models.DedupSet
	playlistID string
	delay      time.Duration
	logger     *log.Logger
}

// NewPlaylistWriter creates a writer over the dedup set already loaded from store.
func NewPlaylistWriter(platform services.VideoPlatform, store state.Store, dedup models.DedupSet, playlistID string, delay time.Duration, logger *log.Logger) *PlaylistWriter {
	return &PlaylistWriter{
		platform:   platform,
		store:      store,
		dedup:      dedup,
		playlistID: playlistID,
		delay:      delay,
		logger:     logger,
	}
}

// Insert adds match to the playlist unless its title was inserted before.
//
// An insert API failure is logged and reported as [models.Failed] with a nil error.
// A non-nil error means the dedup append could not be persisted or ctx ended.
func (w *PlaylistWriter) Insert(ctx context.Context, match *models.Match) (models.InsertOutcome, error) {
	if w.dedup.Contains(match.VideoTitle) {
		w.logger.Info("Already in playlist", "title", match.VideoTitle)
		return models.SkippedDuplicate, nil
	}

	if err := w.platform.InsertPlaylistItem(ctx, w.playlistID, match.VideoID); err != nil {
		if ctx.Err() != nil {
			return models.Failed, ctx.Err()
		}
		w.logger.Error("Insert failed", "video_id", match.VideoID, "title", match.VideoTitle, "error", err)
		return models.Failed, nil
	}

	if err := w.store.AppendDedup(match.VideoTitle); err != nil {
		return models.Inserted, fmt.Errorf("failed to record %q: %w", match.VideoTitle, err)
	}
	w.dedup.Add(match.VideoTitle)
	w.logger.Info("Added", "title", match.VideoTitle, "video_id", match.VideoID)

	if err := sleep(ctx, w.delay); err != nil {
		return models.Inserted, err
	}
	return models.Inserted, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
