// Package config provides configuration management for nfcprofile.
//
// The configuration is a YAML file stored in the platform's configuration
// directory:
//   - Linux: $XDG_CONFIG_HOME/nfcprofile/config.yaml or $HOME/.config/nfcprofile/config.yaml
//   - macOS: $HOME/.config/nfcprofile/config.yaml
//   - Windows: %LOCALAPPDATA%\nfcprofile\config.yaml
//
// A missing file is not an error; defaults are used. Relative data_dir and
// properties_file values are resolved against the file's directory.
//
// # Usage Example
//
//	cfg, err := config.LoadDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db, err := prefs.Open(cfg.DataDir)
//
// # Thread Safety
//
// LoadDefault loads once per process. Save uses a package mutex and an
// atomic rename so a crash never leaves a truncated file.
package config
