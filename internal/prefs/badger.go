package prefs

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/logging"
)

// ErrClosed is returned by operations on a closed DB.
var ErrClosed = errors.New("preference database is closed")

const keyPrefix = "prefs:"

// DB is a Provider that keeps every store in one badger database. Entries
// are keyed "prefs:<store>\x00<key>".
type DB struct {
	db *badger.DB
}

// Open opens (or creates) the preference database in dir.
func Open(dir string) (*DB, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.SyncWrites = true
	return open(opts)
}

// OpenInMemory opens a database that lives only in memory.
func OpenInMemory() (*DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*DB, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	logging.Debug("Preference database opened", zap.String("dir", opts.Dir), zap.Bool("in_memory", opts.InMemory))
	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Store returns the named store.
func (d *DB) Store(name string) *Store {
	return NewStore(name, d)
}

func storePrefix(name string) []byte {
	return []byte(keyPrefix + name + "\x00")
}

func entryKey(name, key string) []byte {
	return append(storePrefix(name), key...)
}

// Load implements Backend.
func (d *DB) Load(name string) (map[string]any, error) {
	if d.db.IsClosed() {
		return nil, ErrClosed
	}

	prefix := storePrefix(name)
	out := make(map[string]any)
	err := d.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key()[len(prefix):])
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			v, err := unmarshalValue(raw)
			if err != nil {
				logging.Warn("Skipping unreadable preference",
					zap.String("store", name),
					zap.String("key", key),
					zap.Error(err),
				)
				continue
			}
			out[key] = v
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load store %q: %w", name, err)
	}
	return out, nil
}

// Commit implements Backend.
func (d *DB) Commit(name string, c Commit) error {
	if d.db.IsClosed() {
		return ErrClosed
	}

	err := d.db.Update(func(txn *badger.Txn) error {
		if c.Clear {
			if err := clearPrefix(txn, storePrefix(name)); err != nil {
				return err
			}
		}
		for _, k := range c.Delete {
			if err := txn.Delete(entryKey(name, k)); err != nil {
				return err
			}
		}
		for k, v := range c.Set {
			raw, err := marshalValue(v)
			if err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			if err := txn.Set(entryKey(name, k), raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("commit store %q: %w", name, err)
	}
	return nil
}

func clearPrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
