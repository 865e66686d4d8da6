package sysprop

import (
	"fmt"
	"sync"
)

// Memory is an in-process Accessor. It records every broadcast and can be
// told to fail reads or writes of specific properties.
type Memory struct {
	mu         sync.Mutex
	ints       map[string]int
	strings    map[string]string
	events     []Event
	failWrites map[string]error
	failReads  map[string]error
}

// NewMemory returns an empty accessor.
func NewMemory() *Memory {
	return &Memory{
		ints:       make(map[string]int),
		strings:    make(map[string]string),
		failWrites: make(map[string]error),
		failReads:  make(map[string]error),
	}
}

// SetInt seeds an integer property without recording a change.
func (m *Memory) SetInt(name string, v int) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ints[name] = v
	return m
}

// SetString seeds a string property without recording a change.
func (m *Memory) SetString(name string, v string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strings[name] = v
	return m
}

// FailWrites makes every later write to name return err.
func (m *Memory) FailWrites(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites[name] = err
}

// FailReads makes every later read of name return err.
func (m *Memory) FailReads(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failReads[name] = err
}

// Events returns the broadcasts recorded so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// GetInt implements Accessor.
func (m *Memory) GetInt(name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failReads[name]; err != nil {
		return 0, err
	}
	v, ok := m.ints[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return v, nil
}

// GetString implements Accessor.
func (m *Memory) GetString(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failReads[name]; err != nil {
		return "", err
	}
	v, ok := m.strings[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return v, nil
}

// PutInt implements Accessor.
func (m *Memory) PutInt(name string, v int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failWrites[name]; err != nil {
		return err
	}
	m.ints[name] = v
	return nil
}

// PutString implements Accessor.
func (m *Memory) PutString(name string, v string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failWrites[name]; err != nil {
		return err
	}
	m.strings[name] = v
	return nil
}

// Broadcast implements Accessor.
func (m *Memory) Broadcast(event string, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{Name: event, Payload: payload})
	return nil
}
