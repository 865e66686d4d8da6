package prefs

import (
	"sort"

	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/logging"
)

// DefaultName is the name of the application's default preference store.
// It holds the key registry, the current profile, setting snapshots and the
// change timestamp.
const DefaultName = "default"

// Commit is one atomic batch of changes to a named store. When Clear is set
// every existing entry is removed before Set and Delete are applied.
type Commit struct {
	Clear  bool
	Set    map[string]any
	Delete []string
}

// Backend persists named stores.
type Backend interface {
	Load(name string) (map[string]any, error)
	Commit(name string, c Commit) error
}

// Provider hands out stores by name. Stores are created lazily on first write.
type Provider interface {
	Store(name string) *Store
}

// Default returns the provider's default store.
func Default(p Provider) *Store {
	return p.Store(DefaultName)
}

// Store is a view onto one named preference store.
type Store struct {
	name    string
	backend Backend
}

// NewStore returns a store view backed by b.
func NewStore(name string, b Backend) *Store {
	return &Store{name: name, backend: b}
}

// Name returns the store name.
func (s *Store) Name() string {
	return s.name
}

// Load returns a copy of every entry, or the backend's read error.
func (s *Store) Load() (map[string]any, error) {
	return s.backend.Load(s.name)
}

// All returns a copy of every entry. Read errors are logged and yield an
// empty map.
func (s *Store) All() map[string]any {
	m, err := s.backend.Load(s.name)
	if err != nil {
		logging.Warn("Failed to read preference store",
			zap.String("store", s.name),
			zap.Error(err),
		)
		return map[string]any{}
	}
	return m
}

// Keys returns the store's keys in sorted order.
func (s *Store) Keys() []string {
	all := s.All()
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the raw value stored under key.
func (s *Store) Lookup(key string) (any, bool) {
	v, ok := s.All()[key]
	return v, ok
}

// Contains reports whether key has a value of any type.
func (s *Store) Contains(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// GetString returns the string under key, or def when absent or not a string.
func (s *Store) GetString(key, def string) string {
	if v, ok := s.Lookup(key); ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return def
}

// GetInt returns the int32 under key, or def when absent or of another type.
func (s *Store) GetInt(key string, def int32) int32 {
	if v, ok := s.Lookup(key); ok {
		if i, ok := v.(int32); ok {
			return i
		}
	}
	return def
}

// GetLong returns the int64 under key, or def when absent or of another type.
func (s *Store) GetLong(key string, def int64) int64 {
	if v, ok := s.Lookup(key); ok {
		if i, ok := v.(int64); ok {
			return i
		}
	}
	return def
}

// GetBool returns the bool under key, or def when absent or of another type.
func (s *Store) GetBool(key string, def bool) bool {
	if v, ok := s.Lookup(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// GetFloat returns the float32 under key, or def when absent or of another type.
func (s *Store) GetFloat(key string, def float32) float32 {
	if v, ok := s.Lookup(key); ok {
		if f, ok := v.(float32); ok {
			return f
		}
	}
	return def
}

// Edit starts a batch of changes.
func (s *Store) Edit() *Editor {
	return &Editor{store: s, mods: make(map[string]any)}
}

type removal struct{}

// Editor collects changes until Apply. A later call for the same key
// replaces an earlier one. Clear always takes effect before the other
// changes, regardless of call order.
type Editor struct {
	store *Store
	clear bool
	mods  map[string]any
}

func (e *Editor) put(key string, v any) *Editor {
	e.mods[key] = v
	return e
}

// PutString stages a string value.
func (e *Editor) PutString(key, v string) *Editor { return e.put(key, v) }

// PutInt stages a 32-bit integer value.
func (e *Editor) PutInt(key string, v int32) *Editor { return e.put(key, v) }

// PutLong stages a 64-bit integer value.
func (e *Editor) PutLong(key string, v int64) *Editor { return e.put(key, v) }

// PutBool stages a boolean value.
func (e *Editor) PutBool(key string, v bool) *Editor { return e.put(key, v) }

// PutFloat stages a 32-bit float value.
func (e *Editor) PutFloat(key string, v float32) *Editor { return e.put(key, v) }

// Remove stages removal of key.
func (e *Editor) Remove(key string) *Editor { return e.put(key, removal{}) }

// Clear stages removal of every existing entry.
func (e *Editor) Clear() *Editor {
	e.clear = true
	return e
}

// Apply commits the staged changes atomically.
func (e *Editor) Apply() error {
	c := Commit{Clear: e.clear, Set: make(map[string]any, len(e.mods))}
	for k, v := range e.mods {
		if _, ok := v.(removal); ok {
			c.Delete = append(c.Delete, k)
			continue
		}
		c.Set[k] = v
	}
	return e.store.backend.Commit(e.store.name, c)
}
