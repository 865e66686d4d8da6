// Package tracker remembers which profile is active and decides whether a
// tag touch applies a profile or restores the previous state.
package tracker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/logging"
	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/profile"
	"github.com/muurk/nfcprofile/internal/registry"
	"github.com/muurk/nfcprofile/internal/setting"
	"github.com/muurk/nfcprofile/internal/sysprop"
)

// Default-store keys owned by the tracker.
const (
	CurrentProfileKey      = "current_profile"
	PrefResetOnSecondTouch = "reset_on_second_touch"
	PrefVibrate            = "vibrate"
)

var (
	// ErrUnknownProfile is returned when activating a key with no name.
	ErrUnknownProfile = errors.New("unknown profile")
	// ErrNoActiveProfile is returned by Deactivate when nothing is active.
	ErrNoActiveProfile = errors.New("no active profile")
)

// Feedback pulse patterns: alternating off/on durations.
var (
	PulseOn  = []time.Duration{0, 100 * time.Millisecond}
	PulseOff = []time.Duration{0, 100 * time.Millisecond, 100 * time.Millisecond, 100 * time.Millisecond}
)

// transitionMu serializes every apply and restore in the process.
var transitionMu sync.Mutex

// Action is what a transition did.
type Action string

const (
	ActionApplied  Action = "applied"
	ActionRestored Action = "restored"
	// ActionUnknown means the key was not a named profile. It has been
	// registered so it can be named.
	ActionUnknown Action = "unknown"
)

// Transition describes the outcome of Invoke, Activate or Deactivate.
type Transition struct {
	Key    string
	Name   string
	Action Action
	Result *profile.Result
}

// Tracker owns the current-profile state.
type Tracker struct {
	provider prefs.Provider
	registry *registry.Registry
	props    sysprop.Accessor
	opts     *profile.Options
}

// New returns a tracker. opts may be nil.
func New(provider prefs.Provider, reg *registry.Registry, props sysprop.Accessor, opts *profile.Options) *Tracker {
	return &Tracker{provider: provider, registry: reg, props: props, opts: opts}
}

func (t *Tracker) defaults() *prefs.Store {
	return prefs.Default(t.provider)
}

func (t *Tracker) env() *setting.Env {
	return &setting.Env{Props: t.props, Snapshots: t.defaults()}
}

// Current returns the active profile key.
func (t *Tracker) Current() (string, bool) {
	key := t.defaults().GetString(CurrentProfileKey, "")
	return key, key != ""
}

// Invoke handles a tag touch for key. With no active profile, or when
// reset_on_second_touch is off, the profile is applied. Otherwise the
// active profile is restored.
func (t *Tracker) Invoke(key string) (*Transition, error) {
	transitionMu.Lock()
	defer transitionMu.Unlock()

	if !t.registry.IsValid(key) {
		if err := t.registry.AddKey(key); err != nil {
			return nil, err
		}
		logging.Info("Tag for unknown profile registered", zap.String("profile", key))
		return &Transition{Key: key, Action: ActionUnknown}, nil
	}

	_, active := t.Current()
	if !active || !t.defaults().GetBool(PrefResetOnSecondTouch, true) {
		return t.activate(key)
	}
	return t.deactivate()
}

// Activate applies key's profile and makes it current.
func (t *Tracker) Activate(key string) (*Transition, error) {
	transitionMu.Lock()
	defer transitionMu.Unlock()
	return t.activate(key)
}

func (t *Tracker) activate(key string) (*Transition, error) {
	if !t.registry.IsValid(key) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, key)
	}

	p := profile.New(t.provider.Store(key), t.opts)
	res := p.Apply(t.env())
	logging.LogTransition(key, string(ActionApplied), res.Duration)

	// The profile counts as current even after a partial failure, so the
	// settings that did change can still be restored.
	if err := t.defaults().Edit().PutString(CurrentProfileKey, key).Apply(); err != nil {
		return nil, fmt.Errorf("record current profile: %w", err)
	}
	t.pulse(PulseOn)

	return &Transition{Key: key, Name: p.Name(), Action: ActionApplied, Result: res}, res.Error
}

// Deactivate restores the current profile's snapshots and clears it.
func (t *Tracker) Deactivate() (*Transition, error) {
	transitionMu.Lock()
	defer transitionMu.Unlock()
	return t.deactivate()
}

func (t *Tracker) deactivate() (*Transition, error) {
	key, ok := t.Current()
	if !ok {
		return nil, ErrNoActiveProfile
	}

	p := profile.New(t.provider.Store(key), t.opts)
	res := p.Restore(t.env())
	logging.LogTransition(key, string(ActionRestored), res.Duration)

	if err := t.defaults().Edit().Remove(CurrentProfileKey).Apply(); err != nil {
		return nil, fmt.Errorf("clear current profile: %w", err)
	}
	t.pulse(PulseOff)

	return &Transition{Key: key, Name: p.Name(), Action: ActionRestored, Result: res}, res.Error
}

func (t *Tracker) pulse(pattern []time.Duration) {
	if !t.defaults().GetBool(PrefVibrate, true) {
		return
	}
	ms := make([]int64, len(pattern))
	for i, d := range pattern {
		ms[i] = d.Milliseconds()
	}
	if err := t.props.Broadcast(sysprop.EventFeedback, map[string]any{"pattern": ms}); err != nil {
		logging.Warn("Feedback pulse failed", zap.Error(err))
	}
}
