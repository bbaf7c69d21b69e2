package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/likesync/internal/shared"
)

// YouTubeSearch prints the match a sync would pick for a query.
func (r *Runner) YouTubeSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	platform, err := r.videoPlatform(ctx)
	if err != nil {
		return err
	}

	r.logger.Debug("searching", "backend", platform.Name(), "query", query)

	match, err := platform.SearchVideo(ctx, query)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(match, true)
	}

	if match == nil {
		return r.writePlain("No results for %q\n", query)
	}

	r.writePlain("%s\n", match.VideoTitle)
	r.writePlain("  ID:  %s\n", match.VideoID)
	return r.writePlain("  URL: %s\n", match.URL())
}

// YouTubeAdd appends a single video to the playlist. It does not touch the sync state.
func (r *Runner) YouTubeAdd(ctx context.Context, cmd *cli.Command) error {
	videoID := cmd.String("video-id")
	playlistID := r.playlistID(cmd)
	if playlistID == "" {
		return fmt.Errorf("%w: --playlist-id or destination.playlist_id", shared.ErrMissingArgument)
	}

	platform, err := r.videoPlatform(ctx)
	if err != nil {
		return err
	}

	if err := platform.InsertPlaylistItem(ctx, playlistID, videoID); err != nil {
		return err
	}

	r.logger.Info("added video", "video_id", videoID, "playlist_id", playlistID)
	return r.writePlain("✓ Added %s to playlist %s\n", videoID, playlistID)
}

// playlistID prefers the --playlist-id flag over the configured destination.
func (r *Runner) playlistID(cmd *cli.Command) string {
	if id := cmd.String("playlist-id"); id != "" {
		return id
	}
	return r.config.Destination.PlaylistID
}
