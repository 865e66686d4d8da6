package setting

import (
	"fmt"
	"math"
	"strconv"

	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/sysprop"
)

const (
	NameScreenTimeout    = "screen_timeout"
	NameScreenBrightness = "screen_brightness"
)

const (
	// DefaultScreenTimeout is used for non-positive desired values, in seconds.
	DefaultScreenTimeout = 120
	millisPerSecond      = 1000
	// MaxScreenTimeout is the largest timeout, in seconds, whose millisecond
	// value still fits a snapshot.
	MaxScreenTimeout = math.MaxInt32 / millisPerSecond

	// DefaultBrightness is restored when no brightness snapshot exists.
	DefaultBrightness = 102
)

// ScreenTimeout sets the screen-off timeout. Desired values are seconds;
// the system property is milliseconds.
type ScreenTimeout struct {
	base
	seconds int
}

// NewScreenTimeout returns an unloaded screen timeout setting.
func NewScreenTimeout() *ScreenTimeout {
	return &ScreenTimeout{base: base{name: NameScreenTimeout}}
}

func (*ScreenTimeout) Kind() Kind { return KindScreenTimeout }

func (t *ScreenTimeout) parse(raw string) error {
	n, err := parseNumber(t.name, raw)
	if err != nil {
		return err
	}
	if n > MaxScreenTimeout {
		return newMalformedError(t.name, raw, fmt.Errorf("timeout above %d seconds", MaxScreenTimeout))
	}
	t.seconds = n
	t.markSet(strconv.Itoa(n))
	return nil
}

func (t *ScreenTimeout) Load(store *prefs.Store) {
	t.load(store, t.parse)
}

func (t *ScreenTimeout) CaptureSnapshot(env *Env) error {
	s := newSnapshot(env, t.name)
	s.captureInt(t.ResetKey(), sysprop.ScreenOffTimeout)
	return s.commit()
}

func (t *ScreenTimeout) Mutate(env *Env) error {
	if !t.set {
		return nil
	}
	secs := t.seconds
	if secs <= 0 {
		secs = DefaultScreenTimeout
	}
	return writeInt(env, t.name, sysprop.ScreenOffTimeout, secs*millisPerSecond)
}

func (t *ScreenTimeout) Restore(env *Env) error {
	if !t.set {
		return nil
	}
	ms := env.Snapshots.GetInt(t.ResetKey(), DefaultScreenTimeout*millisPerSecond)
	return writeInt(env, t.name, sysprop.ScreenOffTimeout, int(ms))
}

// ScreenBrightness sets a manual brightness level, or switches to automatic
// brightness for negative values.
type ScreenBrightness struct {
	base
	level int
}

// NewScreenBrightness returns an unloaded screen brightness setting.
func NewScreenBrightness() *ScreenBrightness {
	return &ScreenBrightness{base: base{name: NameScreenBrightness}}
}

func (*ScreenBrightness) Kind() Kind { return KindScreenBrightness }

func (b *ScreenBrightness) parse(raw string) error {
	n, err := parseNumber(b.name, raw)
	if err != nil {
		return err
	}
	b.level = n
	b.markSet(strconv.Itoa(n))
	return nil
}

func (b *ScreenBrightness) Load(store *prefs.Store) {
	b.load(store, b.parse)
}

func (b *ScreenBrightness) CaptureSnapshot(env *Env) error {
	s := newSnapshot(env, b.name)
	s.captureInt(b.ResetKey("mode"), sysprop.ScreenBrightnessMode)
	s.captureInt(b.ResetKey("value"), sysprop.ScreenBrightness)
	return s.commit()
}

func (b *ScreenBrightness) Mutate(env *Env) error {
	if !b.set {
		return nil
	}
	if b.level < 0 {
		return writeInt(env, b.name, sysprop.ScreenBrightnessMode, sysprop.BrightnessModeAutomatic)
	}
	if err := writeInt(env, b.name, sysprop.ScreenBrightnessMode, sysprop.BrightnessModeManual); err != nil {
		return err
	}
	return writeInt(env, b.name, sysprop.ScreenBrightness, b.level)
}

func (b *ScreenBrightness) Restore(env *Env) error {
	if !b.set {
		return nil
	}
	value := env.Snapshots.GetInt(b.ResetKey("value"), DefaultBrightness)
	if err := writeInt(env, b.name, sysprop.ScreenBrightness, int(value)); err != nil {
		return err
	}
	mode := env.Snapshots.GetInt(b.ResetKey("mode"), sysprop.BrightnessModeAutomatic)
	return writeInt(env, b.name, sysprop.ScreenBrightnessMode, int(mode))
}
