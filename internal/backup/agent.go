package backup

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/logging"
	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/registry"
)

// LastChangeKey is the default-store key of the change timestamp. It is a
// long and therefore never part of a backup itself.
const LastChangeKey = "_last_change"

// Block names.
const (
	MainBlock     = "main"
	ProfilePrefix = "profile_"
)

// NoChange is the timestamp used when nothing was ever marked changed.
const NoChange int64 = -1

// MarkChanged records that preferences were modified at now.
func MarkChanged(defaults *prefs.Store, now time.Time) error {
	return defaults.Edit().PutLong(LastChangeKey, now.UnixMilli()).Apply()
}

// LastChange returns the recorded change timestamp or NoChange.
func LastChange(defaults *prefs.Store) int64 {
	return defaults.GetLong(LastChangeKey, NoChange)
}

// Agent writes and reads full backups of the default store and every
// valid profile.
type Agent struct {
	provider prefs.Provider
	registry *registry.Registry
	now      func() time.Time
}

// NewAgent returns a backup agent.
func NewAgent(provider prefs.Provider, reg *registry.Registry) *Agent {
	return &Agent{provider: provider, registry: reg, now: time.Now}
}

// WithClock replaces the time source used by Restore.
func (a *Agent) WithClock(now func() time.Time) *Agent {
	a.now = now
	return a
}

// BackupResult summarizes a backup.
type BackupResult struct {
	Performed bool
	Blocks    []string
	Bytes     int
}

// Backup writes the "main" block and one "profile_<key>" block per valid
// profile to out, unless oldState shows nothing changed since the last
// backup. The change timestamp is written to newState either way.
func (a *Agent) Backup(oldState io.Reader, out io.Writer, newState io.Writer) (*BackupResult, error) {
	defaults := prefs.Default(a.provider)
	last := LastChange(defaults)
	res := &BackupResult{}

	if ShouldBackup(oldState, last) {
		entries, err := a.registry.ListValid()
		if err != nil {
			return nil, fmt.Errorf("list profiles: %w", err)
		}

		blocks := []Block{{Name: MainBlock, Data: Encode(defaults)}}
		for _, e := range entries {
			blocks = append(blocks, Block{Name: ProfilePrefix + e.Key, Data: Encode(a.provider.Store(e.Key))})
		}

		for _, b := range blocks {
			if err := WriteBlock(out, b.Name, b.Data); err != nil {
				return nil, err
			}
			res.Blocks = append(res.Blocks, b.Name)
			res.Bytes += len(b.Data)
		}
		res.Performed = true
		logging.Info("Backup written", zap.Int("blocks", len(res.Blocks)), zap.Int("bytes", res.Bytes))
	} else {
		logging.Debug("Backup skipped, nothing changed", zap.Int64("last_change", last))
	}

	if newState != nil {
		if err := WriteState(newState, last); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// BlockResult is the outcome of restoring one block.
type BlockResult struct {
	Name    string
	Store   string
	Entries int
	Err     error
}

// RestoreResult summarizes a restore.
type RestoreResult struct {
	Blocks  []BlockResult
	Skipped []string
}

// Failed returns the blocks that did not restore cleanly.
func (r *RestoreResult) Failed() []BlockResult {
	var out []BlockResult
	for _, b := range r.Blocks {
		if b.Err != nil {
			out = append(out, b)
		}
	}
	return out
}

// Restore reads blocks from in and replaces the matching stores. A corrupt
// block keeps whatever entries preceded the corruption and does not stop
// the remaining blocks. Unknown block names are skipped, as is a profile
// block whose key is reserved ("profile_default"). The change timestamp is
// then set to now and written to newState.
func (a *Agent) Restore(in io.Reader, newState io.Writer) (*RestoreResult, error) {
	res := &RestoreResult{}
	br := NewBlockReader(in)

	for {
		b, err := br.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read backup stream: %w", err)
		}

		var storeName string
		switch {
		case b.Name == MainBlock:
			storeName = prefs.DefaultName
		case strings.HasPrefix(b.Name, ProfilePrefix) && registry.CheckKey(b.Name[len(ProfilePrefix):]) == nil:
			storeName = b.Name[len(ProfilePrefix):]
		default:
			logging.Warn("Skipping unknown backup block", zap.String("block", b.Name))
			res.Skipped = append(res.Skipped, b.Name)
			continue
		}

		dec := Decode(b.Data, a.provider.Store(storeName))
		result := BlockResult{Name: b.Name, Store: storeName, Entries: dec.Entries, Err: dec.Err}
		if dec.Err != nil {
			logging.Warn("Backup block restored partially",
				zap.String("block", b.Name),
				zap.Int("entries", dec.Entries),
				zap.Error(dec.Err),
			)
		}
		if storeName != prefs.DefaultName {
			if err := a.registry.AddKey(storeName); err != nil {
				result.Err = errors.Join(result.Err, err)
			}
		}
		res.Blocks = append(res.Blocks, result)
	}

	now := a.now()
	defaults := prefs.Default(a.provider)
	if err := MarkChanged(defaults, now); err != nil {
		return res, fmt.Errorf("record restore time: %w", err)
	}
	if newState != nil {
		if err := WriteState(newState, now.UnixMilli()); err != nil {
			return res, err
		}
	}
	return res, nil
}
