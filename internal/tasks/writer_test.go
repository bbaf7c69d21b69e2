package tasks

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	tu "github.com/desertthunder/likesync/internal/testing"
)

func TestMatcher(t *testing.T) {
	logger := log.New(io.Discard)
	ctx := context.Background()

	t.Run("queries with the track identity", func(t *testing.T) {
		platform := newPlatform()
		match, err := NewMatcher(platform, 0, logger).Search(ctx, song1)
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, "v1", match.VideoID)
		assert.Equal(t, []string{"Song1 by ArtistA"}, platform.Searches)
	})

	t.Run("no results", func(t *testing.T) {
		match, err := NewMatcher(tu.NewMockPlatform(), 0, logger).Search(ctx, song1)
		assert.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("errors are returned", func(t *testing.T) {
		platform := newPlatform()
		platform.SearchErrs[song1.Identity()] = shared.ErrServiceUnavailable
		match, err := NewMatcher(platform, 0, logger).Search(ctx, song1)
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
		assert.Nil(t, match)
	})

	t.Run("interval spaces searches", func(t *testing.T) {
		m := NewMatcher(newPlatform(), 50*time.Millisecond, logger)

		start := time.Now()
		for _, tr := range []models.Track{song1, song2, song3} {
			_, err := m.Search(ctx, tr)
			require.NoError(t, err)
		}
		assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	})
}

func TestPlaylistWriter(t *testing.T) {
	logger := log.New(io.Discard)
	ctx := context.Background()
	match := &models.Match{VideoID: "v1", VideoTitle: "Song1 (Official Video)"}

	t.Run("inserts and records the title", func(t *testing.T) {
		platform := tu.NewMockPlatform()
		store := &tu.MemoryStore{}
		dedup := models.NewDedupSet()
		w := NewPlaylistWriter(platform, store, dedup, "PL1", 0, logger)

		outcome, err := w.Insert(ctx, match)
		require.NoError(t, err)
		assert.Equal(t, models.Inserted, outcome)
		assert.Equal(t, []string{"v1"}, platform.Inserts)
		assert.Equal(t, []string{"song1 (official video)"}, store.Keys)
		assert.True(t, dedup.Contains("SONG1 (official video)"))

		outcome, err = w.Insert(ctx, match)
		require.NoError(t, err)
		assert.Equal(t, models.SkippedDuplicate, outcome)
		assert.Len(t, platform.Inserts, 1)
	})

	t.Run("insert failure is not an error", func(t *testing.T) {
		platform := tu.NewMockPlatform()
		platform.InsertErrs["v1"] = shared.ErrAPIRequest
		store := &tu.MemoryStore{}
		dedup := models.NewDedupSet()

		outcome, err := NewPlaylistWriter(platform, store, dedup, "PL1", 0, logger).Insert(ctx, match)
		require.NoError(t, err)
		assert.Equal(t, models.Failed, outcome)
		assert.Empty(t, store.Keys)
		assert.Empty(t, dedup)
	})

	t.Run("append failure is an error", func(t *testing.T) {
		store := &tu.MemoryStore{AppendErr: shared.ErrStateWrite}
		_, err := NewPlaylistWriter(tu.NewMockPlatform(), store, models.NewDedupSet(), "PL1", 0, logger).Insert(ctx, match)
		assert.ErrorIs(t, err, shared.ErrStateWrite)
	})

	t.Run("waits the insert delay", func(t *testing.T) {
		w := NewPlaylistWriter(tu.NewMockPlatform(), &tu.MemoryStore{}, models.NewDedupSet(), "PL1", 30*time.Millisecond, logger)

		start := time.Now()
		_, err := w.Insert(ctx, match)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})
}
