package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "nfcprofile") {
		t.Errorf("GetConfigDir() = %v, should contain 'nfcprofile'", configDir)
	}

	switch runtime.GOOS {
	case "darwin", "linux":
		if os.Getenv("XDG_CONFIG_HOME") == "" && !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "nfcprofile"); got != want {
		t.Errorf("GetConfigDir() = %q, want %q", got, want)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DataDir != filepath.Join(dir, "data") {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.PropertiesFile != filepath.Join(dir, "properties.yaml") {
		t.Errorf("PropertiesFile = %q", cfg.PropertiesFile)
	}
	if cfg.Bridge.Port != 8765 || !cfg.Bridge.Advertise {
		t.Errorf("Bridge = %+v", cfg.Bridge)
	}
	if cfg.Bridge.TLSEnabled() {
		t.Error("TLS should be off by default")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := New()
	cfg.DataDir = "/var/lib/nfcprofile"
	cfg.LogLevel = "debug"
	cfg.Profiles.ContinueOnError = true
	cfg.Bridge.Port = 9000
	cfg.Bridge.WriteTimeout = 5 * time.Second
	cfg.Bridge.CertFile = "cert.pem"
	cfg.Bridge.KeyFile = "key.pem"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.DataDir != "/var/lib/nfcprofile" {
		t.Errorf("absolute DataDir rewritten: %q", got.DataDir)
	}
	if got.LogLevel != "debug" || !got.Profiles.ContinueOnError {
		t.Errorf("Load() = %+v", got)
	}
	if got.Bridge.Port != 9000 || got.Bridge.WriteTimeout != 5*time.Second || !got.Bridge.TLSEnabled() {
		t.Errorf("Bridge = %+v", got.Bridge)
	}
	if got.Bridge.Address() != "0.0.0.0:9000" {
		t.Errorf("Address() = %q", got.Bridge.Address())
	}
}

func TestLoad_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 2\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for version 2")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nlog_level: warn\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "warn" || cfg.Bridge == nil || cfg.Bridge.Port != 8765 {
		t.Errorf("Load() = %+v", cfg)
	}
}
