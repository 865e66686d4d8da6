package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/nfcprofile/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/nfcprofile/internal/version.Commit=abc123"
//
// Unset values come from the module's VCS stamp, then fall back to "dev".
var (
	Version = ""
	Commit  = ""
)

func init() {
	info, _ := debug.ReadBuildInfo()
	fill(info, time.Now())
}

// fill completes Version and Commit from build info. now dates the
// fallback version when no VCS time is stamped.
func fill(info *debug.BuildInfo, now time.Time) {
	var revision, vcsTime string
	dirty := false
	if info != nil {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				revision = s.Value
			case "vcs.time":
				vcsTime = s.Value
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
		if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}

	if Commit == "" {
		Commit = "unknown"
		if revision != "" {
			Commit = revision[:min(7, len(revision))]
			if dirty {
				Commit += "-dirty"
			}
		}
	}

	if Version == "" {
		stamp := now
		if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
			stamp = t
		}
		Version = "dev-" + stamp.Format("20060102")
	}
}

// Full returns the full version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// String returns the version line printed by the version commands.
func String(app string) string {
	return app + " " + Full()
}
