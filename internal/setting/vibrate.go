package setting

import (
	"fmt"
	"strings"

	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/sysprop"
)

const NameRingMode = "ring_mode"

// Vibrator desired values.
const (
	VibrateSilent = "silent"
)

// Ring mode desired values.
const (
	RingSilent        = "silent"
	RingVibrate       = "vibrate"
	RingNormal        = "ring"
	RingNormalVibrate = "ring_vibrate"
)

// VibratorName returns the setting name for a vibrate channel.
func VibratorName(channel int) string {
	return fmt.Sprintf("vibrator_%d", channel)
}

// Vibrator sets the vibrate behaviour of one channel (ringer or
// notification).
type Vibrator struct {
	base
	channel int
	value   int
}

// NewVibrator returns an unloaded vibrator setting for channel.
func NewVibrator(channel int) *Vibrator {
	return &Vibrator{base: base{name: VibratorName(channel)}, channel: channel}
}

func (*Vibrator) Kind() Kind { return KindVibrator }

// Channel returns the vibrate channel this setting controls.
func (v *Vibrator) Channel() int { return v.channel }

func (v *Vibrator) parse(raw string) error {
	switch strings.ToLower(raw) {
	case Activate, "on":
		v.value = sysprop.VibrateOn
		v.markSet("on")
	case Deactivate, "off":
		v.value = sysprop.VibrateOff
		v.markSet("off")
	case VibrateSilent:
		v.value = sysprop.VibrateOnlySilent
		v.markSet(VibrateSilent)
	default:
		return newUnknownValueError(v.name, raw)
	}
	return nil
}

func (v *Vibrator) Load(store *prefs.Store) {
	v.load(store, v.parse)
}

func (v *Vibrator) CaptureSnapshot(env *Env) error {
	s := newSnapshot(env, v.name)
	s.captureInt(v.ResetKey(), sysprop.VibrateSetting(v.channel))
	return s.commit()
}

func (v *Vibrator) Mutate(env *Env) error {
	if !v.set {
		return nil
	}
	return writeInt(env, v.name, sysprop.VibrateSetting(v.channel), v.value)
}

func (v *Vibrator) Restore(env *Env) error {
	if !v.set {
		return nil
	}
	prev := env.Snapshots.GetInt(v.ResetKey(), sysprop.VibrateOnlySilent)
	return writeInt(env, v.name, sysprop.VibrateSetting(v.channel), int(prev))
}

type ringState int

const (
	ringSilent ringState = iota
	ringVibrate
	ringNormal
	ringNormalVibrate
	// legacy values: activate rings without touching vibration, deactivate
	// goes silent or vibrate depending on the ringer vibrate setting.
	ringActivate
	ringDeactivate
)

// RingMode sets the ringer mode. Because the ringer's vibrate channel is
// part of what users think of as "ring mode", every state except the legacy
// ones also writes vibrate_setting_0. It runs last in a profile so this
// side effect wins over the vibrator_0 setting.
type RingMode struct {
	base
	state ringState
}

// NewRingMode returns an unloaded ring mode setting.
func NewRingMode() *RingMode {
	return &RingMode{base: base{name: NameRingMode}}
}

func (*RingMode) Kind() Kind { return KindRingMode }

func (r *RingMode) parse(raw string) error {
	switch strings.ToLower(raw) {
	case RingSilent:
		r.state = ringSilent
	case RingVibrate:
		r.state = ringVibrate
	case RingNormal, "normal":
		r.state = ringNormal
		raw = RingNormal
	case RingNormalVibrate:
		r.state = ringNormalVibrate
	case Activate:
		r.state = ringActivate
	case Deactivate:
		r.state = ringDeactivate
	default:
		return newUnknownValueError(r.name, raw)
	}
	r.markSet(strings.ToLower(raw))
	return nil
}

func (r *RingMode) Load(store *prefs.Store) {
	r.load(store, r.parse)
}

func (r *RingMode) touchesVibrate() bool {
	return r.state != ringActivate && r.state != ringDeactivate
}

func (r *RingMode) CaptureSnapshot(env *Env) error {
	s := newSnapshot(env, r.name)
	s.captureInt(r.ResetKey(), sysprop.RingerMode)
	s.captureInt(r.ResetKey("vibrate"), sysprop.VibrateSetting(sysprop.VibrateTypeRinger))
	return s.commit()
}

func (r *RingMode) Mutate(env *Env) error {
	if !r.set {
		return nil
	}

	mode, vibrate := sysprop.RingerModeNormal, sysprop.VibrateOff
	switch r.state {
	case ringSilent:
		mode = sysprop.RingerModeSilent
	case ringVibrate:
		mode, vibrate = sysprop.RingerModeVibrate, sysprop.VibrateOn
	case ringNormalVibrate:
		vibrate = sysprop.VibrateOn
	case ringDeactivate:
		current, found, err := readInt(env, r.name, sysprop.VibrateSetting(sysprop.VibrateTypeRinger))
		if err != nil {
			return err
		}
		mode = sysprop.RingerModeVibrate
		if !found || current == sysprop.VibrateOff {
			mode = sysprop.RingerModeSilent
		}
	}

	if err := writeInt(env, r.name, sysprop.RingerMode, mode); err != nil {
		return err
	}
	if !r.touchesVibrate() {
		return nil
	}
	return writeInt(env, r.name, sysprop.VibrateSetting(sysprop.VibrateTypeRinger), vibrate)
}

func (r *RingMode) Restore(env *Env) error {
	if !r.set {
		return nil
	}
	mode := env.Snapshots.GetInt(r.ResetKey(), sysprop.RingerModeNormal)
	if err := writeInt(env, r.name, sysprop.RingerMode, int(mode)); err != nil {
		return err
	}
	if !r.touchesVibrate() {
		return nil
	}
	vibrate := env.Snapshots.GetInt(r.ResetKey("vibrate"), sysprop.VibrateOnlySilent)
	return writeInt(env, r.name, sysprop.VibrateSetting(sysprop.VibrateTypeRinger), int(vibrate))
}
