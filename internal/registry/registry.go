// Package registry tracks the profile keys known to the application.
//
// Keys are stored as a comma separated list in the default preference
// store. A key is only valid while its own store carries a display name;
// keys without one are dropped the next time the full list is read.
package registry

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/logging"
	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/profile"
)

// KeysPref is the default-store key holding the registered profile keys.
const KeysPref = "profile_keys"

var (
	// ErrKeyCollision is returned when a generated key is already registered.
	ErrKeyCollision = errors.New("generated profile key already registered")
	// ErrInvalidKey is returned for keys that cannot name a profile store,
	// including the name of the default store.
	ErrInvalidKey = errors.New("invalid profile key")
)

// Entry is a registered profile.
type Entry struct {
	Key  string
	Name string
}

// Registry manages profile keys.
type Registry struct {
	provider prefs.Provider
	now      func() time.Time
	mu       sync.Mutex
}

// New returns a registry over provider's stores.
func New(provider prefs.Provider) *Registry {
	return &Registry{provider: provider, now: time.Now}
}

// WithClock replaces the time source used by GenerateKey.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

func (r *Registry) defaults() *prefs.Store {
	return prefs.Default(r.provider)
}

func (r *Registry) keys() []string {
	raw := r.defaults().GetString(KeysPref, "")
	if raw == "" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func (r *Registry) saveKeys(keys []string) error {
	if err := r.defaults().Edit().PutString(KeysPref, strings.Join(keys, ",")).Apply(); err != nil {
		return fmt.Errorf("save profile keys: %w", err)
	}
	return nil
}

// Keys returns every registered key, valid or not, in insertion order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys()
}

// GenerateKey derives a new key from the current time and registers it.
func (r *Registry) GenerateKey() (string, error) {
	sum := md5.Sum([]byte(strconv.FormatInt(r.now().UnixMilli(), 10)))
	key := hex.EncodeToString(sum[:])

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := r.keys()
	if slices.Contains(keys, key) {
		return "", fmt.Errorf("%w: %s", ErrKeyCollision, key)
	}
	if err := r.saveKeys(append(keys, key)); err != nil {
		return "", err
	}
	logging.Debug("Generated profile key", zap.String("key", key))
	return key, nil
}

// CheckKey reports whether key may name a profile. The default store's
// name is reserved: a profile there would share the registry, snapshots
// and current-profile state.
func CheckKey(key string) error {
	if key == "" || key == prefs.DefaultName || strings.Contains(key, ",") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// AddKey registers key. Adding a registered key is a no-op.
func (r *Registry) AddKey(key string) error {
	if err := CheckKey(key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := r.keys()
	if slices.Contains(keys, key) {
		return nil
	}
	return r.saveKeys(append(keys, key))
}

// IsValid reports whether key's store has a display name.
func (r *Registry) IsValid(key string) bool {
	if CheckKey(key) != nil {
		return false
	}
	return r.provider.Store(key).Contains(profile.NameKey)
}

// ListValid returns every valid profile and drops invalid keys from the
// registry.
func (r *Registry) ListValid() ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := r.keys()
	entries := make([]Entry, 0, len(keys))
	kept := make([]string, 0, len(keys))
	for _, k := range keys {
		if CheckKey(k) != nil {
			logging.Warn("Pruning reserved profile key", zap.String("key", k))
			continue
		}
		store := r.provider.Store(k)
		if !store.Contains(profile.NameKey) {
			logging.Debug("Pruning profile key without name", zap.String("key", k))
			continue
		}
		kept = append(kept, k)
		entries = append(entries, Entry{Key: k, Name: store.GetString(profile.NameKey, "")})
	}

	if len(kept) != len(keys) {
		if err := r.saveKeys(kept); err != nil {
			return entries, err
		}
	}
	return entries, nil
}

// SetName writes the display name of key, registering it if needed.
func (r *Registry) SetName(key, name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("profile name must not be empty")
	}
	if err := r.AddKey(key); err != nil {
		return err
	}
	return r.provider.Store(key).Edit().PutString(profile.NameKey, name).Apply()
}

// Delete clears key's store and drops it from the registry.
func (r *Registry) Delete(key string) error {
	if err := CheckKey(key); err != nil {
		return err
	}
	if err := r.provider.Store(key).Edit().Clear().Apply(); err != nil {
		return fmt.Errorf("clear profile %s: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := r.keys()
	idx := slices.Index(keys, key)
	if idx < 0 {
		return nil
	}
	return r.saveKeys(slices.Delete(keys, idx, idx+1))
}
