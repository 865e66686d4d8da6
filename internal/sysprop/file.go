package sysprop

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/nfcprofile/internal/logging"
)

// maxEvents bounds the broadcast history kept in the properties file.
const maxEvents = 50

type fileState struct {
	Ints    map[string]int    `yaml:"ints"`
	Strings map[string]string `yaml:"strings"`
	Events  []Event           `yaml:"events,omitempty"`
}

// File is an Accessor backed by a YAML file. It stands in for the host's
// system settings when running the CLI or daemon off-device. Every write is
// persisted immediately with an atomic rename.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns an accessor for the YAML file at path. The file is
// created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) load() (*fileState, error) {
	st := &fileState{}
	data, err := os.ReadFile(f.path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read properties file: %w", err)
	default:
		if err := yaml.Unmarshal(data, st); err != nil {
			return nil, fmt.Errorf("failed to parse properties file: %w", err)
		}
	}
	if st.Ints == nil {
		st.Ints = make(map[string]int)
	}
	if st.Strings == nil {
		st.Strings = make(map[string]string)
	}
	return st, nil
}

func (f *File) save(st *fileState) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create properties directory: %w", err)
	}

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary properties file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save properties file: %w", err)
	}
	return nil
}

func (f *File) update(fn func(st *fileState)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.load()
	if err != nil {
		return err
	}
	fn(st)
	return f.save(st)
}

// Snapshot returns every property and the recorded broadcasts.
func (f *File) Snapshot() (map[string]int, map[string]string, []Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.load()
	if err != nil {
		return nil, nil, nil, err
	}
	return st.Ints, st.Strings, st.Events, nil
}

// GetInt implements Accessor.
func (f *File) GetInt(name string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.load()
	if err != nil {
		return 0, err
	}
	v, ok := st.Ints[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return v, nil
}

// GetString implements Accessor.
func (f *File) GetString(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := st.Strings[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return v, nil
}

// PutInt implements Accessor.
func (f *File) PutInt(name string, v int) error {
	return f.update(func(st *fileState) { st.Ints[name] = v })
}

// PutString implements Accessor.
func (f *File) PutString(name string, v string) error {
	return f.update(func(st *fileState) { st.Strings[name] = v })
}

// Broadcast implements Accessor. Events are logged and the most recent
// ones kept in the file.
func (f *File) Broadcast(event string, payload map[string]any) error {
	logging.Info("Broadcast", zap.String("event", event), zap.Any("payload", payload))
	return f.update(func(st *fileState) {
		st.Events = append(st.Events, Event{Name: event, Payload: payload})
		if len(st.Events) > maxEvents {
			st.Events = st.Events[len(st.Events)-maxEvents:]
		}
	})
}
