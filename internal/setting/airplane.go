package setting

import (
	"strings"

	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/sysprop"
)

// NameAirplaneMode is the preference key of the airplane mode setting.
const NameAirplaneMode = "airplane_mode"

// AirplaneMode toggles airplane mode while keeping the NFC radio alive, so
// the tag that switched airplane mode on can still switch it off.
type AirplaneMode struct {
	base
	on bool
}

// NewAirplaneMode returns an unloaded airplane mode setting.
func NewAirplaneMode() *AirplaneMode {
	return &AirplaneMode{base: base{name: NameAirplaneMode}}
}

func (*AirplaneMode) Kind() Kind { return KindAirplaneMode }

func (a *AirplaneMode) parse(raw string) error {
	on, err := parseToggle(a.name, raw)
	if err != nil {
		return err
	}
	a.on = on
	if on {
		a.markSet(Activate)
	} else {
		a.markSet(Deactivate)
	}
	return nil
}

func (a *AirplaneMode) Load(store *prefs.Store) {
	a.load(store, a.parse)
}

func (a *AirplaneMode) CaptureSnapshot(env *Env) error {
	s := newSnapshot(env, a.name)
	s.captureInt(a.ResetKey(), sysprop.AirplaneModeOn)
	s.captureString(a.ResetKey("radios"), sysprop.AirplaneModeRadios)
	return s.commit()
}

func (a *AirplaneMode) Mutate(env *Env) error {
	if !a.set {
		return nil
	}
	return a.toggle(env, a.on)
}

func (a *AirplaneMode) Restore(env *Env) error {
	if !a.set {
		return nil
	}
	return a.toggle(env, env.Snapshots.GetInt(a.ResetKey(), 0) == 1)
}

// toggle switches airplane mode to turnOn if it is not already there.
// Turning on removes NFC from the radios airplane mode disables; turning
// off puts back the radios list captured before.
func (a *AirplaneMode) toggle(env *Env, turnOn bool) error {
	current, _, err := readInt(env, a.name, sysprop.AirplaneModeOn)
	if err != nil {
		return err
	}
	if (current != 0) == turnOn {
		return nil
	}

	if turnOn {
		radios, found, err := readString(env, a.name, sysprop.AirplaneModeRadios)
		if err != nil {
			return err
		}
		if found {
			if stripped := removeRadio(radios, sysprop.RadioNFC); stripped != radios {
				if err := writeString(env, a.name, sysprop.AirplaneModeRadios, stripped); err != nil {
					return err
				}
			}
		}
	} else if env.Snapshots.Contains(a.ResetKey("radios")) {
		saved := env.Snapshots.GetString(a.ResetKey("radios"), "")
		if err := writeString(env, a.name, sysprop.AirplaneModeRadios, saved); err != nil {
			return err
		}
	}

	state := 0
	if turnOn {
		state = 1
	}
	if err := writeInt(env, a.name, sysprop.AirplaneModeOn, state); err != nil {
		return err
	}
	if err := env.Props.Broadcast(sysprop.EventAirplaneModeChanged, map[string]any{"state": turnOn}); err != nil {
		return newAccessorError(a.name, sysprop.EventAirplaneModeChanged, err)
	}
	return nil
}

func removeRadio(csv, radio string) string {
	parts := strings.Split(csv, ",")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || p == radio {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ",")
}
