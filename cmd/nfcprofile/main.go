// Nfcprofile manages NFC-triggered settings profiles.
//
// A profile is a named set of desired values for airplane mode, screen
// timeout, screen brightness, the two vibrate settings and the ring mode.
// Touching a tag that carries a profile's URI applies the profile; touching
// again restores what was there before.
//
// Usage:
//
//	nfcprofile [command] [flags]
//
// See 'nfcprofile --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/nfcprofile/internal/config"
	"github.com/muurk/nfcprofile/internal/logging"
	"github.com/muurk/nfcprofile/internal/urls"
	"github.com/muurk/nfcprofile/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	dataDir    string
	propsPath  string
	logLevel   string
	assumeYes  bool
)

// cfg is loaded once before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "nfcprofile",
	Short: "NFC settings profile manager",
	Long: `Create settings profiles and switch them with NFC tags.

Each profile stores desired values for airplane mode, screen timeout,
screen brightness, vibration and ring mode. The first touch of a profile
tag applies it and remembers the previous values; the next touch puts
them back.

Documentation: ` + urls.Documentation,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/nfcprofile/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Preference database directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&propsPath, "props", "", "System properties file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var (
		c   *config.Config
		err error
	)
	if configPath == "" {
		c, err = config.LoadDefault()
	} else {
		c, err = config.Load(configPath)
	}
	if err != nil {
		return err
	}
	if dataDir != "" {
		c.DataDir = dataDir
	}
	if propsPath != "" {
		c.PropertiesFile = propsPath
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if err := logging.Initialize(c.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg = c
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String("nfcprofile"))
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.GetConfigPath(); err != nil {
				return err
			}
		}
		if _, err := os.Stat(path); err == nil && !assumeYes {
			return fmt.Errorf("%s already exists (use --yes to overwrite)", path)
		}
		if err := config.New().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}
