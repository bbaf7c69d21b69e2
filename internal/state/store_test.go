package state

import (
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

type backend struct {
	name string
	// open returns a store rooted at dir; calling it twice with the same dir simulates a restart.
	open func(t *testing.T, dir string) Store
}

func backends() []backend {
	return []backend{
		{name: "file", open: func(t *testing.T, dir string) Store {
			return NewFileStore(filepath.Join(dir, "last_track.txt"), filepath.Join(dir, "added_songs.txt"))
		}},
		{name: "sqlite", open: func(t *testing.T, dir string) Store {
			s, err := OpenSQLiteStore(shared.DatabaseConfig{Path: filepath.Join(dir, "state.db"), MaxOpenConns: 1})
			require.NoError(t, err)
			return s
		}},
		{name: "badger", open: func(t *testing.T, dir string) Store {
			s, err := OpenBadgerStore(filepath.Join(dir, "kv"))
			require.NoError(t, err)
			return s
		}},
	}
}

func TestStoreContract(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			t.Run("Empty", func(t *testing.T) {
				s := b.open(t, t.TempDir())
				defer s.Close()

				_, ok, err := s.LoadCursor()
				require.NoError(t, err)
				assert.False(t, ok)

				set, err := s.LoadDedupSet()
				require.NoError(t, err)
				assert.Empty(t, set)
			})

			t.Run("Cursor Overwrites", func(t *testing.T) {
				s := b.open(t, t.TempDir())
				defer s.Close()

				require.NoError(t, s.SaveCursor("Song1 by ArtistA"))
				require.NoError(t, s.SaveCursor("Song2 by ArtistB"))

				identity, ok, err := s.LoadCursor()
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "Song2 by ArtistB", identity)
			})

			t.Run("Cursor Keeps Trailing Space", func(t *testing.T) {
				s := b.open(t, t.TempDir())
				defer s.Close()

				identity := models.Track{Title: "Untitled"}.Identity()
				require.NoError(t, s.SaveCursor(identity))

				got, ok, err := s.LoadCursor()
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, identity, got)
			})

			t.Run("Dedup Collapses Duplicates", func(t *testing.T) {
				s := b.open(t, t.TempDir())
				defer s.Close()

				require.NoError(t, s.AppendDedup("Video One"))
				require.NoError(t, s.AppendDedup("VIDEO ONE"))
				require.NoError(t, s.AppendDedup("Video\nTwo"))

				set, err := s.LoadDedupSet()
				require.NoError(t, err)
				assert.Len(t, set, 2)
				assert.True(t, set.Has("video one"))
				assert.True(t, set.Has("video two"))
			})

			t.Run("Survives Restart", func(t *testing.T) {
				dir := t.TempDir()

				first := b.open(t, dir)
				require.NoError(t, first.SaveCursor("Song3 by ArtistC"))
				require.NoError(t, first.AppendDedup("Song3 Video"))
				require.NoError(t, first.Close())

				second := b.open(t, dir)
				defer second.Close()

				identity, ok, err := second.LoadCursor()
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "Song3 by ArtistC", identity)

				set, err := second.LoadDedupSet()
				require.NoError(t, err)
				assert.True(t, set.Contains("Song3 Video"))
			})

			t.Run("Dedup Is Monotonic", func(t *testing.T) {
				dir := t.TempDir()
				var previous models.DedupSet

				for run, title := range []string{"a", "b", "c"} {
					s := b.open(t, dir)
					require.NoError(t, s.AppendDedup(title))

					set, err := s.LoadDedupSet()
					require.NoError(t, err)
					for key := range previous {
						assert.True(t, set.Has(key), "run %d lost key %q", run, key)
					}
					previous = set
					require.NoError(t, s.Close())
				}
				assert.Len(t, previous, 3)
			})
		})
	}
}

func TestBackendName(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "file", BackendName(NewFileStore("a", "b")))
	assert.Equal(t, "badger", BackendName(NewBadgerStore(db)))
}

func TestOpen(t *testing.T) {
	cfg := shared.DefaultConfig()
	cfg.State.Dir = t.TempDir()

	t.Run("file", func(t *testing.T) {
		s, err := Open(cfg)
		require.NoError(t, err)
		defer s.Close()

		fs, ok := s.(*FileStore)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(cfg.State.Dir, "last_track.txt"), fs.CursorPath())
	})

	t.Run("sqlite", func(t *testing.T) {
		c := *cfg
		c.Database.Path = filepath.Join(cfg.State.Dir, "likesync.db")

		s, err := OpenBackend(&c, "sqlite")
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, "sqlite", BackendName(s))
		_, isRecorder := s.(RunRecorder)
		assert.True(t, isRecorder)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := OpenBackend(cfg, "redis")
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})
}
