package state

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// FileStore keeps the cursor in one file and the dedup log in another.
//
// The cursor file holds a single identity and is replaced atomically on save.
// The dedup log has one key per line and is only ever appended to.
type FileStore struct {
	cursorPath string
	dedupPath  string
}

// NewFileStore creates a [FileStore]. Neither file needs to exist yet.
func NewFileStore(cursorPath, dedupPath string) *FileStore {
	return &FileStore{cursorPath: cursorPath, dedupPath: dedupPath}
}

func (s *FileStore) CursorPath() string { return s.cursorPath }
func (s *FileStore) DedupPath() string  { return s.dedupPath }

// LoadCursor reads the cursor file. A missing or blank file means no cursor.
func (s *FileStore) LoadCursor() (string, bool, error) {
	data, err := os.ReadFile(s.cursorPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cursor file: %w", err)
	}

	identity := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(identity) == "" {
		return "", false, nil
	}
	return identity, true, nil
}

// SaveCursor writes identity to a temporary file in the same directory, syncs it and renames it over the cursor file.
func (s *FileStore) SaveCursor(identity string) error {
	dir := filepath.Dir(s.cursorPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStateWrite, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.cursorPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStateWrite, err)
	}
	tmpName := tmp.Name()

	if err := writeAndSync(tmp, identity+"\n"); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: cursor: %v", shared.ErrStateWrite, err)
	}

	if err := os.Rename(tmpName, s.cursorPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: cursor: %v", shared.ErrStateWrite, err)
	}
	return nil
}

// LoadDedupSet reads the dedup log. A missing file is an empty set.
func (s *FileStore) LoadDedupSet() (models.DedupSet, error) {
	set := models.NewDedupSet()

	f, err := os.Open(s.dedupPath)
	if errors.Is(err, fs.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open dedup log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		set.Add(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: dedup log: %v", shared.ErrStateCorrupt, err)
	}
	return set, nil
}

// AppendDedup appends the key for title as one line and syncs the log.
func (s *FileStore) AppendDedup(title string) error {
	if err := os.MkdirAll(filepath.Dir(s.dedupPath), 0755); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStateWrite, err)
	}

	f, err := os.OpenFile(s.dedupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: dedup log: %v", shared.ErrStateWrite, err)
	}

	if err := writeAndSync(f, models.DedupKey(title)+"\n"); err != nil {
		return fmt.Errorf("%w: dedup log: %v", shared.ErrStateWrite, err)
	}
	return nil
}

// Close is a no-op; files are opened per operation.
func (s *FileStore) Close() error { return nil }

// writeAndSync writes data, syncs and closes f. f is closed on every path.
func writeAndSync(f *os.File, data string) error {
	if _, err := f.WriteString(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
