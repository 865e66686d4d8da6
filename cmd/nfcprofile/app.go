package main

import (
	"fmt"
	"time"

	"github.com/muurk/nfcprofile/internal/backup"
	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/profile"
	"github.com/muurk/nfcprofile/internal/registry"
	"github.com/muurk/nfcprofile/internal/sysprop"
	"github.com/muurk/nfcprofile/internal/tracker"
)

// app bundles the stores and services a command works with.
type app struct {
	db       *prefs.DB
	props    *sysprop.File
	registry *registry.Registry
	tracker  *tracker.Tracker
	agent    *backup.Agent
}

func openApp() (*app, error) {
	db, err := prefs.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("%w (is nfcprofiled running with the same data directory?)", err)
	}

	opts := profile.DefaultOptions()
	if cfg.Profiles != nil && cfg.Profiles.ContinueOnError {
		opts.Policy = profile.ContinueOnError
	}

	props := sysprop.NewFile(cfg.PropertiesFile)
	reg := registry.New(db)
	return &app{
		db:       db,
		props:    props,
		registry: reg,
		tracker:  tracker.New(db, reg, props, opts),
		agent:    backup.NewAgent(db, reg),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// markChanged records a preference change for the next backup.
func (a *app) markChanged() error {
	return backup.MarkChanged(prefs.Default(a.db), time.Now())
}

// withApp opens the app for the duration of fn.
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
