package sysprop

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFile_PutGet(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "sub", "props.yaml"))

	if _, err := f.GetInt(RingerMode); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetInt() on empty file error = %v, want ErrNotFound", err)
	}

	if err := f.PutInt(RingerMode, RingerModeVibrate); err != nil {
		t.Fatalf("PutInt() error = %v", err)
	}
	if err := f.PutString(AirplaneModeRadios, "cell,bluetooth,wifi,nfc"); err != nil {
		t.Fatalf("PutString() error = %v", err)
	}

	// A fresh accessor on the same path sees the persisted values.
	g := NewFile(f.Path())
	got, err := g.GetInt(RingerMode)
	if err != nil || got != RingerModeVibrate {
		t.Errorf("GetInt() = %d, %v; want %d", got, err, RingerModeVibrate)
	}
	radios, err := g.GetString(AirplaneModeRadios)
	if err != nil || radios != "cell,bluetooth,wifi,nfc" {
		t.Errorf("GetString() = %q, %v", radios, err)
	}
	if _, err := g.GetString(RingerMode); !errors.Is(err, ErrNotFound) {
		t.Errorf("ints and strings must not share a namespace, got err = %v", err)
	}
}

func TestFile_BroadcastHistoryIsBounded(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "props.yaml"))

	for i := 0; i < maxEvents+5; i++ {
		if err := f.Broadcast(EventFeedback, map[string]any{"n": i}); err != nil {
			t.Fatalf("Broadcast() error = %v", err)
		}
	}

	_, _, events, err := f.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(events) != maxEvents {
		t.Fatalf("len(events) = %d, want %d", len(events), maxEvents)
	}
	if n := events[len(events)-1].Payload["n"]; n != maxEvents+4 {
		t.Errorf("last event payload = %v, want %d", n, maxEvents+4)
	}
}

func TestMemory_FailWrites(t *testing.T) {
	m := NewMemory().SetInt(ScreenOffTimeout, 30000)
	boom := errors.New("boom")
	m.FailWrites(ScreenOffTimeout, boom)

	if err := m.PutInt(ScreenOffTimeout, 1); !errors.Is(err, boom) {
		t.Fatalf("PutInt() error = %v, want %v", err, boom)
	}
	if v, _ := m.GetInt(ScreenOffTimeout); v != 30000 {
		t.Errorf("value changed despite failed write: %d", v)
	}
}

func TestVibrateSetting(t *testing.T) {
	if got := VibrateSetting(VibrateTypeNotification); got != "vibrate_setting_1" {
		t.Errorf("VibrateSetting(1) = %q", got)
	}
}
