package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/services"
)

// Matcher finds the top video for a track on the destination platform.
type Matcher struct {
	platform services.VideoPlatform
	logger   *log.Logger
	limiter  *rate.Limiter
}

// NewMatcher creates a Matcher. A positive interval spaces out consecutive searches.
func NewMatcher(platform services.VideoPlatform, interval time.Duration, logger *log.Logger) *Matcher {
	m := &Matcher{platform: platform, logger: logger}
	if interval > 0 {
		m.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return m
}

// Search queries the platform with the track identity.
//
// Zero results return (nil, nil). Search errors are logged and returned; callers treat both as a miss.
func (m *Matcher) Search(ctx context.Context, track models.Track) (*models.Match, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
	}

	query := track.Identity()
	match, err := m.platform.SearchVideo(ctx, query)
	if err != nil {
		m.logger.Error("Search failed", "query", query, "error", err)
		return nil, err
	}
	if match == nil {
		m.logger.Warn("No video found", "query", query)
		return nil, nil
	}

	m.logger.Debug("Matched", "query", query, "video_id", match.VideoID, "title", match.VideoTitle)
	return match, nil
}
