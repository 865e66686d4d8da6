package prefs

import "sync"

// Memory is an in-process Backend and Provider.
type Memory struct {
	mu     sync.RWMutex
	stores map[string]map[string]any
}

// NewMemory returns an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{stores: make(map[string]map[string]any)}
}

// Store returns the named store.
func (m *Memory) Store(name string) *Store {
	return NewStore(name, m)
}

// Load implements Backend.
func (m *Memory) Load(name string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.stores[name]
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out, nil
}

// Commit implements Backend.
func (m *Memory) Commit(name string, c Commit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.stores[name]
	if entries == nil || c.Clear {
		entries = make(map[string]any)
		m.stores[name] = entries
	}
	for _, k := range c.Delete {
		delete(entries, k)
	}
	for k, v := range c.Set {
		entries[k] = v
	}
	return nil
}
