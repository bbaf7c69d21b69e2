package state

import (
	"errors"

	"github.com/desertthunder/likesync/internal/models"
)

var (
	ErrLocked         = errors.New("another sync run holds the state lock")
	ErrUnknownBackend = errors.New("unknown state backend")
)

// Store is the durable home of the cursor and the dedup set.
//
// Writes must be durable before they return: a crash after SaveCursor or AppendDedup
// returns must not lose that write.
type Store interface {
	// LoadCursor returns the last saved track identity. ok is false when none was saved.
	LoadCursor() (identity string, ok bool, err error)
	// SaveCursor overwrites the cursor.
	SaveCursor(identity string) error
	// LoadDedupSet reads every appended key.
	LoadDedupSet() (models.DedupSet, error)
	// AppendDedup adds the key for title. The set never shrinks.
	AppendDedup(title string) error
	Close() error
}

// RunRecorder is implemented by stores that keep a run history.
type RunRecorder interface {
	RecordRun(report *models.SyncReport) error
}

// BackendName reports which backend s is, for display.
func BackendName(s Store) string {
	switch s.(type) {
	case *FileStore:
		return "file"
	case *SQLiteStore:
		return "sqlite"
	case *BadgerStore:
		return "badger"
	default:
		return "custom"
	}
}
