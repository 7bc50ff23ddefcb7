package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-navigator/pkg/log"
	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

const (
	kvKeyPrefix  = "nav:"       // Namespace for navigator keys in the DB
	libraryDBDir = "library_db" // Subdirectory name within stateDir for Badger DB files
)

// BadgerStore implements KVStore and StoreAdmin using BadgerDB
type BadgerStore struct {
	db  *badger.DB
	log *logrus.Entry
}

var (
	_ KVStore    = (*BadgerStore)(nil)
	_ StoreAdmin = (*BadgerStore)(nil)
)

// NewBadgerStore opens (or creates) the library database under stateDir.
func NewBadgerStore(stateDir string, logger *logrus.Entry) (*BadgerStore, error) {
	dbPath := filepath.Join(stateDir, libraryDBDir)
	logger.Infof("Opening library database at: %s", dbPath)

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: cannot create state directory %s: %w", utils.ErrFilesystem, dbPath, err)
	}

	opts := badger.DefaultOptions(dbPath)
	return openBadger(opts, logger)
}

// NewInMemoryBadgerStore opens a BadgerDB that lives only for the life of the process.
// Used for ephemeral sessions and tests.
func NewInMemoryBadgerStore(logger *logrus.Entry) (*BadgerStore, error) {
	logger.Debug("Opening in-memory library database")
	return openBadger(badger.DefaultOptions("").WithInMemory(true), logger)
}

func openBadger(opts badger.Options, logger *logrus.Entry) (*BadgerStore, error) {
	badgerLogger := log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))
	opts = opts.
		WithLogger(badgerLogger).
		WithNumVersionsToKeep(1) // Only the latest snapshot of each key matters

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open badger database at %q: %w", utils.ErrDatabase, opts.Dir, err)
	}
	return &BadgerStore{db: db, log: logger}, nil
}

const maxConflictRetries = 10

// dbUpdate wraps db.Update with a retry loop for BadgerDB transaction conflicts.
// Concurrent MVCC transactions on overlapping keys can return badger.ErrConflict;
// these resolve in microseconds, so a tight retry loop is sufficient.
func (s *BadgerStore) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := range maxConflictRetries {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debugf("BadgerDB transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

func (s *BadgerStore) ready() error {
	if s.db == nil || s.db.IsClosed() {
		return fmt.Errorf("%w: library database not open", utils.ErrDatabase)
	}
	return nil
}

// Get implements KVStore
func (s *BadgerStore) Get(key string) ([]byte, bool, error) {
	if err := s.ready(); err != nil {
		return nil, false, err
	}
	dbKey := []byte(kvKeyPrefix + key)

	var value []byte
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, errGet := txn.Get(dbKey)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			return nil // Missing is reported through found, not as an error
		}
		if errGet != nil {
			return errGet
		}
		found = true
		value, errGet = item.ValueCopy(nil)
		return errGet
	})
	if err != nil {
		s.log.WithField("key", key).Errorf("DB View error in Get: %v", err)
		return nil, false, fmt.Errorf("%w: reading key '%s': %w", utils.ErrDatabase, key, err)
	}
	return value, found, nil
}

// Put implements KVStore
func (s *BadgerStore) Put(key string, value []byte) error {
	if err := s.ready(); err != nil {
		return err
	}
	dbKey := []byte(kvKeyPrefix + key)

	err := s.dbUpdate(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(dbKey, value))
	})
	if err != nil {
		s.log.WithField("key", key).Errorf("DB Update error in Put: %v", err)
		return fmt.Errorf("%w: writing key '%s': %w", utils.ErrDatabase, key, err)
	}
	s.log.Debugf("Stored %d bytes under key '%s'", len(value), key)
	return nil
}

// Delete implements KVStore
func (s *BadgerStore) Delete(key string) error {
	if err := s.ready(); err != nil {
		return err
	}
	dbKey := []byte(kvKeyPrefix + key)

	err := s.dbUpdate(func(txn *badger.Txn) error {
		return txn.Delete(dbKey)
	})
	if err != nil {
		s.log.WithField("key", key).Errorf("DB Update error in Delete: %v", err)
		return fmt.Errorf("%w: deleting key '%s': %w", utils.ErrDatabase, key, err)
	}
	return nil
}

// Keys implements StoreAdmin
func (s *BadgerStore) Keys() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var keys []string
	prefix := []byte(kvKeyPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing keys: %w", utils.ErrDatabase, err)
	}
	return keys, nil
}

// RunGC runs BadgerDB's value log garbage collection periodically until ctx is done.
// In-memory databases have no value log, so the loop returns immediately for them.
func (s *BadgerStore) RunGC(ctx context.Context, interval time.Duration) {
	if s.db == nil || s.db.Opts().InMemory {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Debug("BadgerDB GC goroutine started.")

	for {
		select {
		case <-ticker.C:
			if s.db.IsClosed() {
				s.log.Debug("DB GC: Database is closed, stopping GC.")
				return
			}
			var err error
			for {
				// Run GC if log is at least 50% reclaimable space
				if err = s.db.RunValueLogGC(0.5); err != nil {
					break
				}
			}
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.log.Errorf("BadgerDB GC error: %v", err)
			}

		case <-ctx.Done():
			s.log.Debugf("Stopping BadgerDB garbage collection: %v", ctx.Err())
			return
		}
	}
}

// Close implements KVStore
func (s *BadgerStore) Close() error {
	if s.db != nil && !s.db.IsClosed() {
		s.log.Debug("Closing library DB...")
		if err := s.db.Close(); err != nil {
			s.log.Errorf("Error closing library DB: %v", err)
			return err
		}
		return nil
	}
	return nil
}
