package profile

import (
	"errors"
	"reflect"
	"testing"

	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/setting"
	"github.com/muurk/nfcprofile/internal/sysprop"
)

func seededProps() *sysprop.Memory {
	return sysprop.NewMemory().
		SetInt(sysprop.AirplaneModeOn, 0).
		SetString(sysprop.AirplaneModeRadios, "cell,bluetooth,wifi,nfc").
		SetInt(sysprop.ScreenOffTimeout, 30000).
		SetInt(sysprop.ScreenBrightness, 180).
		SetInt(sysprop.ScreenBrightnessMode, sysprop.BrightnessModeManual).
		SetInt(sysprop.VibrateSetting(0), sysprop.VibrateOnlySilent).
		SetInt(sysprop.VibrateSetting(1), sysprop.VibrateOff).
		SetInt(sysprop.RingerMode, sysprop.RingerModeVibrate)
}

func newStore(t *testing.T, p *prefs.Memory, key string, values map[string]string) *prefs.Store {
	t.Helper()
	s := p.Store(key)
	ed := s.Edit().PutString(NameKey, "Test "+key)
	for k, v := range values {
		ed.PutString(k, v)
	}
	if err := ed.Apply(); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return s
}

func intProp(t *testing.T, m *sysprop.Memory, name string) int {
	t.Helper()
	v, err := m.GetInt(name)
	if err != nil {
		t.Fatalf("GetInt(%s): %v", name, err)
	}
	return v
}

func TestNew_LoadsInFixedOrder(t *testing.T) {
	mem := prefs.NewMemory()
	p := New(newStore(t, mem, "k1", map[string]string{setting.NameRingMode: setting.RingSilent}), nil)

	if p.Key() != "k1" || p.Name() != "Test k1" {
		t.Errorf("Key/Name = %q/%q", p.Key(), p.Name())
	}

	var names []string
	for _, s := range p.Settings() {
		names = append(names, s.Name())
	}
	if !reflect.DeepEqual(names, setting.Names()) {
		t.Errorf("settings order = %v", names)
	}
	if last := p.Settings()[len(p.Settings())-1]; last.Kind() != setting.KindRingMode || last.Desired() != setting.RingSilent {
		t.Errorf("last setting = %s %q", last.Kind(), last.Desired())
	}
}

func TestApply_RingModeWinsOverVibrator(t *testing.T) {
	mem := prefs.NewMemory()
	props := seededProps()
	env := &setting.Env{Props: props, Snapshots: prefs.Default(mem)}

	p := New(newStore(t, mem, "k", map[string]string{
		setting.NameRingMode:    setting.RingNormalVibrate,
		setting.VibratorName(0): "off",
	}), nil)

	res := p.Apply(env)
	if !res.Success {
		t.Fatalf("Apply() failed: %v", res.Error)
	}
	if got := intProp(t, props, sysprop.RingerMode); got != sysprop.RingerModeNormal {
		t.Errorf("ringer_mode = %d, want normal", got)
	}
	if got := intProp(t, props, sysprop.VibrateSetting(0)); got != sysprop.VibrateOn {
		t.Errorf("vibrate_setting_0 = %d, want on", got)
	}
	if !reflect.DeepEqual(res.Changed, []string{"vibrator_0", "ring_mode"}) {
		t.Errorf("Changed = %v", res.Changed)
	}
}

func TestApplyRestore_FullProfileRoundTrip(t *testing.T) {
	mem := prefs.NewMemory()
	props := seededProps()
	env := &setting.Env{Props: props, Snapshots: prefs.Default(mem)}

	before := map[string]int{}
	for _, name := range []string{
		sysprop.AirplaneModeOn, sysprop.ScreenOffTimeout, sysprop.ScreenBrightness,
		sysprop.ScreenBrightnessMode, sysprop.VibrateSetting(0), sysprop.VibrateSetting(1), sysprop.RingerMode,
	} {
		before[name] = intProp(t, props, name)
	}

	p := New(newStore(t, mem, "k", map[string]string{
		setting.NameAirplaneMode:     setting.Activate,
		setting.NameScreenTimeout:    "0",
		setting.NameScreenBrightness: "-1",
		setting.VibratorName(0):      "off",
		setting.VibratorName(1):      "silent",
		setting.NameRingMode:         setting.RingNormalVibrate,
	}), nil)

	if res := p.Apply(env); !res.Success {
		t.Fatalf("Apply() failed: %v", res.Error)
	}
	if got := intProp(t, props, sysprop.ScreenOffTimeout); got != 120000 {
		t.Errorf("screen_off_timeout = %d, want 120000", got)
	}

	// Restore is run on a freshly loaded profile, as after a restart.
	res := New(mem.Store("k"), nil).Restore(env)
	if !res.Success {
		t.Fatalf("Restore() failed: %v", res.Error)
	}

	for name, want := range before {
		if got := intProp(t, props, name); got != want {
			t.Errorf("%s = %d after restore, want %d", name, got, want)
		}
	}
	if radios, _ := props.GetString(sysprop.AirplaneModeRadios); radios != "cell,bluetooth,wifi,nfc" {
		t.Errorf("radios = %q", radios)
	}
}

func TestApply_FailurePolicies(t *testing.T) {
	values := map[string]string{
		setting.NameScreenTimeout:    "60",
		setting.NameScreenBrightness: "10",
		setting.NameRingMode:         setting.RingSilent,
	}

	t.Run("stop on error", func(t *testing.T) {
		mem := prefs.NewMemory()
		props := seededProps()
		props.FailWrites(sysprop.ScreenBrightnessMode, errors.New("denied"))
		env := &setting.Env{Props: props, Snapshots: prefs.Default(mem)}

		res := New(newStore(t, mem, "k", values), nil).Apply(env)
		if res.Success || !setting.IsAccessorError(res.Error) {
			t.Fatalf("expected accessor failure, got %v", res.Error)
		}
		if !reflect.DeepEqual(res.Failed, []string{"screen_brightness"}) {
			t.Errorf("Failed = %v", res.Failed)
		}
		if !reflect.DeepEqual(res.Changed, []string{"screen_timeout"}) {
			t.Errorf("Changed = %v", res.Changed)
		}
		// Partial application is not rolled back, later settings never run.
		if got := intProp(t, props, sysprop.ScreenOffTimeout); got != 60000 {
			t.Errorf("screen_off_timeout = %d, want 60000", got)
		}
		if got := intProp(t, props, sysprop.RingerMode); got != sysprop.RingerModeVibrate {
			t.Errorf("ring_mode ran after failure: %d", got)
		}
	})

	t.Run("stop on capture error", func(t *testing.T) {
		mem := prefs.NewMemory()
		props := seededProps()
		props.FailReads(sysprop.ScreenBrightness, errors.New("unreadable"))
		env := &setting.Env{Props: props, Snapshots: prefs.Default(mem)}

		res := New(newStore(t, mem, "k", values), nil).Apply(env)
		if res.Success || !setting.IsAccessorError(res.Error) {
			t.Fatalf("expected accessor failure, got %v", res.Error)
		}
		if !reflect.DeepEqual(res.Failed, []string{"screen_brightness"}) {
			t.Errorf("Failed = %v", res.Failed)
		}
		// Settings captured before the failure still apply.
		if !reflect.DeepEqual(res.Changed, []string{"screen_timeout"}) {
			t.Errorf("Changed = %v", res.Changed)
		}
		if got := intProp(t, props, sysprop.ScreenOffTimeout); got != 60000 {
			t.Errorf("screen_off_timeout = %d, want 60000", got)
		}
		if got := env.Snapshots.GetInt("RESET_screen_timeout", -1); got != 30000 {
			t.Errorf("RESET_screen_timeout = %d, want 30000", got)
		}
		if got := intProp(t, props, sysprop.RingerMode); got != sysprop.RingerModeVibrate {
			t.Errorf("ring_mode ran after failure: %d", got)
		}
		skipped := map[string]bool{}
		for _, name := range res.Skipped {
			skipped[name] = true
		}
		if !skipped[setting.NameRingMode] || skipped[setting.NameScreenTimeout] || skipped[setting.NameScreenBrightness] {
			t.Errorf("Skipped = %v", res.Skipped)
		}
		if got := len(res.Changed) + len(res.Failed) + len(res.Skipped); got != len(setting.New()) {
			t.Errorf("result covers %d settings, want %d", got, len(setting.New()))
		}
	})

	t.Run("continue on error", func(t *testing.T) {
		mem := prefs.NewMemory()
		props := seededProps()
		props.FailWrites(sysprop.ScreenBrightnessMode, errors.New("denied"))
		env := &setting.Env{Props: props, Snapshots: prefs.Default(mem)}

		res := New(newStore(t, mem, "k", values), &Options{Policy: ContinueOnError}).Apply(env)
		if res.Success {
			t.Fatal("expected failure")
		}
		if !reflect.DeepEqual(res.Changed, []string{"screen_timeout", "ring_mode"}) {
			t.Errorf("Changed = %v", res.Changed)
		}
		if got := intProp(t, props, sysprop.RingerMode); got != sysprop.RingerModeSilent {
			t.Errorf("ringer_mode = %d, want silent", got)
		}
	})
}

func TestRestore_SkipsUnchanged(t *testing.T) {
	mem := prefs.NewMemory()
	props := seededProps()
	env := &setting.Env{Props: props, Snapshots: prefs.Default(mem)}

	p := New(newStore(t, mem, "k", map[string]string{setting.NameScreenTimeout: "15"}), nil)
	p.Apply(env)

	// Someone changes the ringer while the profile is active.
	props.SetInt(sysprop.RingerMode, sysprop.RingerModeSilent)

	res := p.Restore(env)
	if !reflect.DeepEqual(res.Changed, []string{"screen_timeout"}) {
		t.Errorf("Changed = %v", res.Changed)
	}
	if got := intProp(t, props, sysprop.RingerMode); got != sysprop.RingerModeSilent {
		t.Errorf("unchanged ring_mode was restored to %d", got)
	}
	if res.Summary() != "1 changed, 5 skipped" {
		t.Errorf("Summary() = %q", res.Summary())
	}
}
