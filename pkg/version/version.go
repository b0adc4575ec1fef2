// Package version reports the rulesync build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Build-time variables injected via -ldflags. A binary built with
// `go install` has none of them and falls back to the module build info.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the release version, or the module version recorded
// by the go tool when none was injected.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// GetCommit returns the build commit, falling back to the VCS revision
// stamped into the binary.
func GetCommit() string {
	if Commit != "none" {
		return Commit
	}
	if info, ok := readBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return shortRevision(s.Value)
			}
		}
	}
	return Commit
}

// GetDate returns the build date.
func GetDate() string {
	return Date
}

// GetFullVersion returns "<version> (commit: <commit>, built: <date>)".
func GetFullVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", GetVersion(), GetCommit(), GetDate())
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
