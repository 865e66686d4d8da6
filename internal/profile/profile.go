package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/logging"
	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/setting"
)

// NameKey is the preference key holding a profile's display name.
const NameKey = "name"

// FailurePolicy controls what happens when one setting fails.
type FailurePolicy int

const (
	// StopOnError skips every setting after the first failure, whether it
	// failed to capture or to mutate. Settings before it still apply and are
	// not rolled back.
	StopOnError FailurePolicy = iota
	// ContinueOnError attempts every setting and reports all failures.
	ContinueOnError
)

// Options configures a profile transition
type Options struct {
	// Policy decides whether a failing setting stops the transition
	// Default: StopOnError
	Policy FailurePolicy
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() *Options {
	return &Options{Policy: StopOnError}
}

// Result describes the outcome of Apply or Restore.
type Result struct {
	// Success is true when no setting failed
	Success bool

	// Changed lists settings that had a desired value and ran
	Changed []string

	// Skipped lists settings left alone, either unchanged or never reached
	Skipped []string

	// Failed lists settings whose step returned an error
	Failed []string

	// Duration is the time spent on the transition
	Duration time.Duration

	// Error joins every failure
	Error error
}

// Summary formats the result on one line.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d changed", len(r.Changed))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, ", %d skipped", len(r.Skipped))
	}
	if len(r.Failed) > 0 {
		fmt.Fprintf(&b, ", %d failed (%s)", len(r.Failed), strings.Join(r.Failed, ", "))
	}
	return b.String()
}

// Profile is the ordered set of settings loaded from one preference store.
// Order is fixed: airplane mode, screen timeout, screen brightness,
// vibrator 0, vibrator 1, ring mode.
type Profile struct {
	key      string
	name     string
	settings []setting.Setting
	opts     *Options
}

// New builds a profile from store, loading every setting's desired value.
func New(store *prefs.Store, opts *Options) *Profile {
	if opts == nil {
		opts = DefaultOptions()
	}
	p := &Profile{
		key:      store.Name(),
		name:     store.GetString(NameKey, ""),
		settings: setting.New(),
		opts:     opts,
	}
	for _, s := range p.settings {
		s.Load(store)
	}
	return p
}

// Key returns the profile key (the name of its preference store).
func (p *Profile) Key() string { return p.key }

// Name returns the display name, empty for unregistered profiles.
func (p *Profile) Name() string { return p.name }

// Settings returns the loaded settings in application order.
func (p *Profile) Settings() []setting.Setting { return p.settings }

// Apply snapshots every setting first and then mutates them in order.
// Capturing all snapshots before the first write keeps each snapshot equal
// to the state before the profile, even where two settings share a
// property (vibrator_0 and ring_mode).
func (p *Profile) Apply(env *setting.Env) *Result {
	start := time.Now()
	r := &Result{}
	var errs []error

	// Under StopOnError a capture failure ends the capture phase; settings
	// before it were captured and still mutate, later ones are skipped.
	limit := len(p.settings)
	for i, s := range p.settings {
		if err := s.CaptureSnapshot(env); err != nil {
			errs = append(errs, err)
			r.Failed = append(r.Failed, s.Name())
			logging.Error("Snapshot failed", zap.String("profile", p.key), zap.String("setting", s.Name()), zap.Error(err))
			if p.opts.Policy == StopOnError {
				limit = i
				break
			}
		}
	}

	failed := make(map[string]bool, len(r.Failed))
	for _, name := range r.Failed {
		failed[name] = true
	}

	for i, s := range p.settings[:limit] {
		if failed[s.Name()] {
			continue
		}
		if s.Desired() == setting.Unchanged {
			r.Skipped = append(r.Skipped, s.Name())
			continue
		}
		if err := s.Mutate(env); err != nil {
			errs = append(errs, err)
			r.Failed = append(r.Failed, s.Name())
			logging.Error("Apply failed", zap.String("profile", p.key), zap.String("setting", s.Name()), zap.Error(err))
			if p.opts.Policy == StopOnError {
				r.skip(p.settings[i+1 : limit])
				break
			}
			continue
		}
		r.Changed = append(r.Changed, s.Name())
	}
	if limit < len(p.settings) {
		r.skip(p.settings[limit+1:])
	}

	return r.finish(start, errs)
}

// Restore writes every setting's snapshot back, in order.
func (p *Profile) Restore(env *setting.Env) *Result {
	start := time.Now()
	r := &Result{}
	var errs []error

	for i, s := range p.settings {
		if s.Desired() == setting.Unchanged {
			r.Skipped = append(r.Skipped, s.Name())
			continue
		}
		if err := s.Restore(env); err != nil {
			errs = append(errs, err)
			r.Failed = append(r.Failed, s.Name())
			logging.Error("Restore failed", zap.String("profile", p.key), zap.String("setting", s.Name()), zap.Error(err))
			if p.opts.Policy == StopOnError {
				r.skip(p.settings[i+1:])
				break
			}
			continue
		}
		r.Changed = append(r.Changed, s.Name())
	}

	return r.finish(start, errs)
}

func (r *Result) skip(rest []setting.Setting) {
	for _, s := range rest {
		r.Skipped = append(r.Skipped, s.Name())
	}
}

func (r *Result) finish(start time.Time, errs []error) *Result {
	r.Duration = time.Since(start)
	r.Error = errors.Join(errs...)
	r.Success = r.Error == nil
	return r
}
