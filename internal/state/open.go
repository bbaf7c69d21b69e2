package state

import (
	"fmt"

	"github.com/desertthunder/likesync/internal/shared"
)

// Open returns the backend selected by cfg.State.Backend.
func Open(cfg *shared.Config) (Store, error) {
	switch cfg.State.Backend {
	case "", "file":
		return NewFileStore(cfg.State.CursorPath(), cfg.State.DedupPath()), nil
	case "sqlite":
		return OpenSQLiteStore(cfg.Database)
	case "badger":
		return OpenBadgerStore(cfg.State.BadgerPath())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.State.Backend)
	}
}

// OpenBackend is [Open] with the backend name overridden.
func OpenBackend(cfg *shared.Config, backend string) (Store, error) {
	c := *cfg
	c.State.Backend = backend
	return Open(&c)
}
