// Package version reports the build's version and source revision.
package version

import (
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/agentic-research/mdsql/internal/version.Version=..."
var (
	Version = ""
	Commit  = ""
)

// Get returns the version without a leading "v" and the source commit.
// Values not set at link time come from the module build info; the version
// falls back to "0.0.0-dev" and the commit to "unknown".
func Get() (version, commit string) {
	version, commit = Version, Commit

	if info, ok := debug.ReadBuildInfo(); ok {
		if version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		if commit == "" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					commit = s.Value
				}
			}
		}
	}

	if version == "" {
		version = "0.0.0-dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	return strings.TrimPrefix(version, "v"), commit
}

// String is the version as md_version reports it, e.g. "v0.3.1".
func String() string {
	v, _ := Get()
	return "v" + v
}

// Debug is the two-line report returned by md_debug.
func Debug() string {
	v, c := Get()
	return "Version: v" + v + "\nSource: " + c + "\n"
}
