package config

import "time"

// Config represents the entire configuration file.
type Config struct {
	Version        int            `yaml:"version"`
	DataDir        string         `yaml:"data_dir,omitempty"`        // badger preference database
	PropertiesFile string         `yaml:"properties_file,omitempty"` // system properties used off-device
	LogLevel       string         `yaml:"log_level,omitempty"`       // debug, info, warn, error
	Profiles       *ProfileConfig `yaml:"profiles,omitempty"`
	Bridge         *BridgeConfig  `yaml:"bridge,omitempty"`
}

// ProfileConfig controls profile transitions.
type ProfileConfig struct {
	ContinueOnError bool `yaml:"continue_on_error"` // attempt every setting even after a failure
}

// BridgeConfig configures the tag bridge daemon.
type BridgeConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	CertFile     string        `yaml:"cert_file,omitempty"` // TLS is enabled when both files are set
	KeyFile      string        `yaml:"key_file,omitempty"`
	Advertise    bool          `yaml:"advertise"`     // announce the daemon over mDNS
	Instance     string        `yaml:"instance"`      // mDNS instance name
	WriteTimeout time.Duration `yaml:"write_timeout"` // how long a tag write may take
}

// TLSEnabled reports whether both certificate and key are configured.
func (b *BridgeConfig) TLSEnabled() bool {
	return b.CertFile != "" && b.KeyFile != ""
}

// Address returns host:port.
func (b *BridgeConfig) Address() string {
	return joinHostPort(b.Host, b.Port)
}

// New creates a Config with default values. Paths are resolved relative to
// the configuration directory by Resolve.
func New() *Config {
	return &Config{
		Version:        1,
		DataDir:        "data",
		PropertiesFile: "properties.yaml",
		Profiles:       &ProfileConfig{},
		Bridge: &BridgeConfig{
			Host:         "0.0.0.0",
			Port:         8765,
			Advertise:    true,
			Instance:     "nfcprofile",
			WriteTimeout: 30 * time.Second,
		},
	}
}
