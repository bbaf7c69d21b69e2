package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// Key layout
const (
	cursorKey   = "cursor"
	dedupPrefix = "dedup:"
)

// BadgerStore keeps sync state in a badger directory.
//
// The cursor lives under a single key; each dedup key is stored as "dedup:<key>" with the original title as value.
type BadgerStore struct {
	db    *badger.DB
	owned bool
}

// NewBadgerStore wraps an open database. The caller keeps ownership of db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadgerStore opens (or creates) a badger directory with synchronous writes.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithSyncWrites(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, owned: true}, nil
}

func (s *BadgerStore) LoadCursor() (string, bool, error) {
	var identity string

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cursorKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			identity = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cursor: %w", err)
	}

	if strings.TrimSpace(identity) == "" {
		return "", false, nil
	}
	return identity, true, nil
}

func (s *BadgerStore) SaveCursor(identity string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(cursorKey), []byte(identity))
	})
	if err != nil {
		return fmt.Errorf("%w: set cursor: %v", shared.ErrStateWrite, err)
	}
	return nil
}

func (s *BadgerStore) LoadDedupSet() (models.DedupSet, error) {
	set := models.NewDedupSet()

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(dedupPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := strings.TrimPrefix(string(it.Item().Key()), dedupPrefix)
			set[key] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan dedup keys: %w", err)
	}
	return set, nil
}

func (s *BadgerStore) AppendDedup(title string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(dedupPrefix+models.DedupKey(title)), []byte(title))
	})
	if err != nil {
		return fmt.Errorf("%w: set dedup key: %v", shared.ErrStateWrite, err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
