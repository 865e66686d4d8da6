package registry

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/profile"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestGenerateKey(t *testing.T) {
	r := New(prefs.NewMemory()).WithClock(fixedClock(1700000000000))

	key, err := r.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if len(key) != 32 {
		t.Errorf("key %q is not a hex md5", key)
	}
	if got := r.Keys(); !reflect.DeepEqual(got, []string{key}) {
		t.Errorf("Keys() = %v", got)
	}

	// Same millisecond, same key.
	if _, err := r.GenerateKey(); !errors.Is(err, ErrKeyCollision) {
		t.Errorf("second GenerateKey() error = %v, want ErrKeyCollision", err)
	}
	if n := len(r.Keys()); n != 1 {
		t.Errorf("collision registered a key, have %d", n)
	}
}

func TestAddKey_Idempotent(t *testing.T) {
	r := New(prefs.NewMemory())

	for i := 0; i < 3; i++ {
		if err := r.AddKey("abc"); err != nil {
			t.Fatalf("AddKey() error = %v", err)
		}
	}
	if err := r.AddKey("def"); err != nil {
		t.Fatal(err)
	}
	if got := r.Keys(); !reflect.DeepEqual(got, []string{"abc", "def"}) {
		t.Errorf("Keys() = %v", got)
	}
	if err := r.AddKey("a,b"); err == nil {
		t.Error("AddKey accepted a key containing a comma")
	}
}

func TestListValid_PrunesUnnamed(t *testing.T) {
	mem := prefs.NewMemory()
	r := New(mem)

	for _, k := range []string{"named1", "orphan", "named2"} {
		if err := r.AddKey(k); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.SetName("named1", "Work"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetName("named2", "Night"); err != nil {
		t.Fatal(err)
	}
	// orphan has settings but no name
	if err := mem.Store("orphan").Edit().PutString("ring_mode", "silent").Apply(); err != nil {
		t.Fatal(err)
	}

	entries, err := r.ListValid()
	if err != nil {
		t.Fatalf("ListValid() error = %v", err)
	}
	want := []Entry{{Key: "named1", Name: "Work"}, {Key: "named2", Name: "Night"}}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("ListValid() = %v, want %v", entries, want)
	}

	// Naming the orphan later does not bring it back.
	if err := mem.Store("orphan").Edit().PutString(profile.NameKey, "Late").Apply(); err != nil {
		t.Fatal(err)
	}
	if got := r.Keys(); !reflect.DeepEqual(got, []string{"named1", "named2"}) {
		t.Errorf("Keys() after prune = %v", got)
	}
	if !r.IsValid("orphan") {
		t.Error("IsValid reads the profile store, not the key list")
	}
}

func TestDelete(t *testing.T) {
	mem := prefs.NewMemory()
	r := New(mem)

	if err := r.SetName("k", "Gym"); err != nil {
		t.Fatal(err)
	}
	if !r.IsValid("k") {
		t.Fatal("expected k to be valid")
	}

	if err := r.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if r.IsValid("k") {
		t.Error("deleted profile still valid")
	}
	if len(mem.Store("k").All()) != 0 {
		t.Error("profile store not cleared")
	}
	if len(r.Keys()) != 0 {
		t.Errorf("Keys() = %v", r.Keys())
	}
	if err := r.Delete("missing"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestSetName_RejectsEmpty(t *testing.T) {
	r := New(prefs.NewMemory())
	if err := r.SetName("k", "  "); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestReservedDefaultKey(t *testing.T) {
	mem := prefs.NewMemory()
	r := New(mem)

	key, err := r.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetName(key, "Night"); err != nil {
		t.Fatal(err)
	}
	if err := prefs.Default(mem).Edit().PutString("RESET_ring_mode", "2").Apply(); err != nil {
		t.Fatal(err)
	}

	if err := r.AddKey(prefs.DefaultName); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("AddKey(default) error = %v, want ErrInvalidKey", err)
	}
	if err := r.SetName(prefs.DefaultName, "Home"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("SetName(default) error = %v, want ErrInvalidKey", err)
	}
	if err := r.Delete(prefs.DefaultName); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Delete(default) error = %v, want ErrInvalidKey", err)
	}
	if r.IsValid(prefs.DefaultName) {
		t.Error("default store reported as a valid profile")
	}

	if got := r.Keys(); !reflect.DeepEqual(got, []string{key}) {
		t.Errorf("Keys() = %v, want [%s]", got, key)
	}
	defaults := prefs.Default(mem)
	if defaults.Contains(profile.NameKey) {
		t.Error("default store was given a profile name")
	}
	if !defaults.Contains("RESET_ring_mode") {
		t.Error("snapshots in the default store were cleared")
	}
}

func TestListValid_PrunesReservedKey(t *testing.T) {
	mem := prefs.NewMemory()
	r := New(mem)
	// A key list written before the default name was reserved.
	if err := prefs.Default(mem).Edit().
		PutString(KeysPref, "default,k1").
		PutString(profile.NameKey, "Home").
		Apply(); err != nil {
		t.Fatal(err)
	}
	if err := r.SetName("k1", "Work"); err != nil {
		t.Fatal(err)
	}

	entries, err := r.ListValid()
	if err != nil {
		t.Fatal(err)
	}
	if want := []Entry{{Key: "k1", Name: "Work"}}; !reflect.DeepEqual(entries, want) {
		t.Errorf("ListValid() = %v, want %v", entries, want)
	}
	if got := r.Keys(); !reflect.DeepEqual(got, []string{"k1"}) {
		t.Errorf("Keys() = %v", got)
	}
}
