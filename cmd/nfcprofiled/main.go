// Nfcprofiled is the tag bridge daemon for nfcprofile.
//
// It owns the preference database, accepts websocket connections from NFC
// reader bridges, applies or restores profiles when tags are read, and
// writes profile URIs to tags on request. The daemon announces itself over
// mDNS so bridges and the nfcprofile CLI can find it.
//
// Usage:
//
//	nfcprofiled [flags]
//
// See 'nfcprofiled --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/backup"
	"github.com/muurk/nfcprofile/internal/config"
	"github.com/muurk/nfcprofile/internal/discovery"
	"github.com/muurk/nfcprofile/internal/logging"
	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/profile"
	"github.com/muurk/nfcprofile/internal/registry"
	"github.com/muurk/nfcprofile/internal/server"
	"github.com/muurk/nfcprofile/internal/sysprop"
	"github.com/muurk/nfcprofile/internal/tracker"
	"github.com/muurk/nfcprofile/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	configPath  string
	dataDir     string
	propsPath   string
	certPath    string
	keyPath     string
	host        string
	port        int
	logLevel    string
	noAdvertise bool
)

var rootCmd = &cobra.Command{
	Use:   "nfcprofiled",
	Short: "nfcprofile tag bridge daemon",
	Long: `Serve NFC tag bridges over websocket and switch profiles when tags
are read.

Bridges connect to /tag. POST /write?key=<key> writes a profile URI to the
next tag presented to the most recently connected bridge.`,
	Example: `  # Defaults from the config file
  nfcprofiled

  # Custom port with debug logging
  nfcprofiled --port 9000 --log-level debug

  # TLS
  nfcprofiled --cert fullchain.pem --key privkey.pem`,
	Version:      version.Version,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runDaemon,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/nfcprofile/config.yaml)")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "Preference database directory (overrides config)")
	rootCmd.Flags().StringVar(&propsPath, "props", "", "System properties file (overrides config)")
	rootCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file")
	rootCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file")
	rootCmd.Flags().StringVar(&host, "host", "", "Listen address (overrides config)")
	rootCmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&noAdvertise, "no-advertise", false, "Do not announce the daemon over mDNS")
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.GetConfigPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if propsPath != "" {
		cfg.PropertiesFile = propsPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	b := cfg.Bridge
	if certPath != "" || keyPath != "" {
		b.CertFile, b.KeyFile = certPath, keyPath
	}
	if host != "" {
		b.Host = host
	}
	if port != 0 {
		b.Port = port
	}
	if noAdvertise {
		b.Advertise = false
	}

	if (b.CertFile == "") != (b.KeyFile == "") {
		return nil, fmt.Errorf("both a certificate and a key must be provided together, or neither")
	}
	return cfg, nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	db, err := prefs.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := profile.DefaultOptions()
	if cfg.Profiles.ContinueOnError {
		opts.Policy = profile.ContinueOnError
	}

	reg := registry.New(db)
	props := sysprop.NewFile(cfg.PropertiesFile)
	inv := &recordingInvoker{
		tracker:  tracker.New(db, reg, props, opts),
		defaults: prefs.Default(db),
	}

	srv, err := server.New(&server.Config{
		Host:         cfg.Bridge.Host,
		Port:         cfg.Bridge.Port,
		CertPath:     cfg.Bridge.CertFile,
		KeyPath:      cfg.Bridge.KeyFile,
		WriteTimeout: cfg.Bridge.WriteTimeout,
	}, inv)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	if cfg.Bridge.Advertise {
		ad, err := discovery.Advertise(cfg.Bridge.Instance, cfg.Bridge.Port, version.Version, cfg.Bridge.TLSEnabled(), nil)
		if err != nil {
			// The daemon is still reachable by address.
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			defer ad.Shutdown()
		}
	}

	logging.Info("nfcprofiled ready",
		zap.String("version", version.Full()),
		zap.String("data_dir", cfg.DataDir),
		zap.String("properties", cfg.PropertiesFile),
	)
	return srv.Start(context.Background())
}

// recordingInvoker marks preferences changed after each tag transition so
// the next backup picks them up.
type recordingInvoker struct {
	tracker  *tracker.Tracker
	defaults *prefs.Store
}

func (r *recordingInvoker) Invoke(key string) (*tracker.Transition, error) {
	tr, err := r.tracker.Invoke(key)
	if tr != nil {
		if markErr := backup.MarkChanged(r.defaults, time.Now()); markErr != nil {
			logging.Error("Failed to record preference change", zap.Error(markErr))
		}
	}
	return tr, err
}
