package setting

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/logging"
	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/sysprop"
)

// Desired value sentinels shared by several settings.
const (
	Unchanged  = "unchanged"
	Activate   = "activate"
	Deactivate = "deactivate"
)

// ResetPrefix starts every snapshot key.
const ResetPrefix = "RESET_"

// Kind identifies a setting variant.
type Kind int

const (
	KindAirplaneMode Kind = iota
	KindScreenTimeout
	KindScreenBrightness
	KindVibrator
	KindRingMode
)

func (k Kind) String() string {
	switch k {
	case KindAirplaneMode:
		return "AirplaneMode"
	case KindScreenTimeout:
		return "ScreenTimeout"
	case KindScreenBrightness:
		return "ScreenBrightness"
	case KindVibrator:
		return "Vibrator"
	case KindRingMode:
		return "RingMode"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Setting is one unit of device state a profile can change and restore.
// The set of implementations is closed to this package.
type Setting interface {
	Kind() Kind
	Name() string
	// Desired returns the canonical desired value, or Unchanged.
	Desired() string
	Load(store *prefs.Store)
	CaptureSnapshot(env *Env) error
	Mutate(env *Env) error
	Restore(env *Env) error

	parse(raw string) error
}

// Env is what a setting needs to touch the system.
type Env struct {
	Props     sysprop.Accessor
	Snapshots *prefs.Store
}

// Apply snapshots the current system state for s and then writes its
// desired value.
func Apply(s Setting, env *Env) error {
	if err := s.CaptureSnapshot(env); err != nil {
		return err
	}
	return s.Mutate(env)
}

// New returns a fresh instance of every setting in profile order.
func New() []Setting {
	return []Setting{
		NewAirplaneMode(),
		NewScreenTimeout(),
		NewScreenBrightness(),
		NewVibrator(sysprop.VibrateTypeRinger),
		NewVibrator(sysprop.VibrateTypeNotification),
		NewRingMode(),
	}
}

// Lookup returns a fresh, unloaded setting by name.
func Lookup(name string) (Setting, bool) {
	for _, s := range New() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Names returns every setting name in profile order.
func Names() []string {
	all := New()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name()
	}
	return names
}

// Validate parses value for the named setting and returns its canonical
// form.
func Validate(name, value string) (string, error) {
	s, ok := Lookup(name)
	if !ok {
		return "", fmt.Errorf("unknown setting %q", name)
	}
	value = strings.TrimSpace(value)
	if value == "" || value == Unchanged {
		return Unchanged, nil
	}
	if err := s.parse(value); err != nil {
		return "", err
	}
	return s.Desired(), nil
}

type base struct {
	name    string
	desired string
	set     bool
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Desired() string {
	if !b.set {
		return Unchanged
	}
	return b.desired
}

// ResetKey returns the snapshot key for this setting, optionally suffixed.
func (b *base) ResetKey(suffix ...string) string {
	key := ResetPrefix + b.name
	for _, s := range suffix {
		key += "_" + s
	}
	return key
}

func (b *base) markSet(canonical string) {
	b.desired = canonical
	b.set = true
}

// load reads the raw desired value and hands it to parse. Integers stored
// natively are accepted as their decimal form.
func (b *base) load(store *prefs.Store, parse func(string) error) {
	b.set = false
	b.desired = ""

	v, ok := store.Lookup(b.name)
	if !ok {
		return
	}

	var raw string
	switch val := v.(type) {
	case string:
		raw = val
	case int32:
		raw = strconv.Itoa(int(val))
	case int64:
		raw = strconv.FormatInt(val, 10)
	case bool:
		raw = Deactivate
		if val {
			raw = Activate
		}
	default:
		logging.Warn("Ignoring desired value of unsupported type",
			zap.String("setting", b.name),
			zap.String("type", fmt.Sprintf("%T", v)),
		)
		return
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == Unchanged {
		return
	}
	if err := parse(raw); err != nil {
		logging.Warn("Ignoring desired value", zap.String("setting", b.name), zap.Error(err))
		b.set = false
	}
}

func parseToggle(name, raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case Activate, "on":
		return true, nil
	case Deactivate, "off":
		return false, nil
	default:
		return false, newUnknownValueError(name, raw)
	}
}

// parseNumber accepts only values that fit the store's 32-bit integers.
func parseNumber(name, raw string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, newMalformedError(name, raw, err)
	}
	return int(n), nil
}

func readInt(env *Env, setting, property string) (int, bool, error) {
	v, err := env.Props.GetInt(property)
	if errors.Is(err, sysprop.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, newAccessorError(setting, property, err)
	}
	return v, true, nil
}

func readString(env *Env, setting, property string) (string, bool, error) {
	v, err := env.Props.GetString(property)
	if errors.Is(err, sysprop.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, newAccessorError(setting, property, err)
	}
	return v, true, nil
}

func writeInt(env *Env, setting, property string, v int) error {
	old, _ := env.Props.GetInt(property)
	if err := env.Props.PutInt(property, v); err != nil {
		return newAccessorError(setting, property, err)
	}
	logging.LogPropertyChange(setting, property, old, v)
	return nil
}

func writeString(env *Env, setting, property string, v string) error {
	old, _ := env.Props.GetString(property)
	if err := env.Props.PutString(property, v); err != nil {
		return newAccessorError(setting, property, err)
	}
	logging.LogPropertyChange(setting, property, old, v)
	return nil
}

// snapshot batches reset-key writes for one setting into a single commit.
type snapshot struct {
	env     *Env
	setting string
	ed      *prefs.Editor
	err     error
}

func newSnapshot(env *Env, setting string) *snapshot {
	return &snapshot{env: env, setting: setting, ed: env.Snapshots.Edit()}
}

func (s *snapshot) captureInt(key, property string) {
	if s.err != nil {
		return
	}
	v, found, err := readInt(s.env, s.setting, property)
	switch {
	case err != nil:
		s.err = err
	case v < math.MinInt32 || v > math.MaxInt32:
		s.err = newAccessorError(s.setting, property, fmt.Errorf("value %d does not fit a snapshot", v))
	case found:
		s.ed.PutInt(key, int32(v))
	default:
		s.ed.Remove(key)
	}
}

func (s *snapshot) captureString(key, property string) {
	if s.err != nil {
		return
	}
	v, found, err := readString(s.env, s.setting, property)
	switch {
	case err != nil:
		s.err = err
	case found:
		s.ed.PutString(key, v)
	default:
		s.ed.Remove(key)
	}
}

func (s *snapshot) commit() error {
	if s.err != nil {
		return s.err
	}
	if err := s.ed.Apply(); err != nil {
		return newSnapshotError(s.setting, err)
	}
	return nil
}
