package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

type limitedCatalog interface {
	LikedTracksLimit(ctx context.Context, limit int) ([]models.Track, error)
}

// SpotifyLikes lists liked songs in the order the sync processes them.
func (r *Runner) SpotifyLikes(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	catalog, err := r.spotifyService(ctx)
	if err != nil {
		return err
	}

	r.logger.Infof("listing liked songs with limit %v", limit)

	var tracks []models.Track
	if lc, ok := catalog.(limitedCatalog); ok {
		tracks, err = lc.LikedTracksLimit(ctx, limit)
	} else {
		tracks, err = catalog.LikedTracks(ctx)
		if err == nil && limit > 0 && len(tracks) > limit {
			tracks = tracks[:limit]
		}
	}
	if err != nil {
		return handleSpotifyError(err)
	}

	if useJSON {
		return r.writeJSON(tracks, pretty)
	}

	if len(tracks) == 0 {
		return r.writePlain("No liked songs found.\n")
	}

	rows := make([][]string, 0, len(tracks))
	for i, t := range tracks {
		rows = append(rows, []string{strconv.Itoa(i + 1), t.Title, t.Artist, t.Album})
	}
	r.writePlain("%s\n", renderTable(
		[]string{"#", "Title", "Artist", "Album"},
		rows,
		[]columnAlignment{alignRight},
		isTerminal(r.output),
	))
	return r.writePlain("Total: %d tracks\n", len(tracks))
}

// handleSpotifyError adds a re-auth hint to token failures.
func handleSpotifyError(err error) error {
	if errors.Is(err, shared.ErrTokenExpired) || errors.Is(err, shared.ErrAuthFailed) {
		return fmt.Errorf("%w\n\nRun 'likesync auth spotify' to re-authenticate", err)
	}
	return err
}
