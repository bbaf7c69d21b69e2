package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/likesync/internal/shared"
)

func TestFileStore(t *testing.T) {
	t.Run("Blank Cursor File", func(t *testing.T) {
		dir := t.TempDir()
		cursor := filepath.Join(dir, "last_track.txt")
		require.NoError(t, os.WriteFile(cursor, []byte("  \n"), 0644))

		_, ok, err := NewFileStore(cursor, filepath.Join(dir, "added.txt")).LoadCursor()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Cursor Without Newline", func(t *testing.T) {
		dir := t.TempDir()
		cursor := filepath.Join(dir, "last_track.txt")
		require.NoError(t, os.WriteFile(cursor, []byte("Song1 by ArtistA"), 0644))

		identity, ok, err := NewFileStore(cursor, filepath.Join(dir, "added.txt")).LoadCursor()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Song1 by ArtistA", identity)
	})

	t.Run("Save Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFileStore(filepath.Join(dir, "last_track.txt"), filepath.Join(dir, "added.txt"))

		for _, id := range []string{"a by b", "c by d"} {
			require.NoError(t, s.SaveCursor(id))
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "last_track.txt", entries[0].Name())

		data, err := os.ReadFile(s.CursorPath())
		require.NoError(t, err)
		assert.Equal(t, "c by d\n", string(data))
	})

	t.Run("Creates State Directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "state")
		s := NewFileStore(filepath.Join(dir, "last_track.txt"), filepath.Join(dir, "added.txt"))

		require.NoError(t, s.SaveCursor("x by y"))
		require.NoError(t, s.AppendDedup("Some Title"))

		data, err := os.ReadFile(s.DedupPath())
		require.NoError(t, err)
		assert.Equal(t, "some title\n", string(data))
	})

	t.Run("Dedup Log Appends", func(t *testing.T) {
		dir := t.TempDir()
		log := filepath.Join(dir, "added.txt")
		require.NoError(t, os.WriteFile(log, []byte("existing title\r\n\n"), 0644))

		s := NewFileStore(filepath.Join(dir, "last_track.txt"), log)
		require.NoError(t, s.AppendDedup("New Title"))

		data, err := os.ReadFile(log)
		require.NoError(t, err)
		assert.Equal(t, "existing title\r\n\nnew title\n", string(data))

		set, err := s.LoadDedupSet()
		require.NoError(t, err)
		assert.Len(t, set, 2)
		assert.True(t, set.Has("existing title"))
	})

	t.Run("Unwritable Directory", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission checks do not apply to root")
		}
		dir := t.TempDir()
		require.NoError(t, os.Chmod(dir, 0500))
		t.Cleanup(func() { os.Chmod(dir, 0755) })

		s := NewFileStore(filepath.Join(dir, "last_track.txt"), filepath.Join(dir, "added.txt"))
		assert.ErrorIs(t, s.SaveCursor("a by b"), shared.ErrStateWrite)
		assert.ErrorIs(t, s.AppendDedup("t"), shared.ErrStateWrite)
	})
}
