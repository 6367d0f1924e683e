// Package buildinfo reports the fiberlat build version.
//
// Release builds stamp the variables via ldflags:
//
//	go build -ldflags "-X github.com/poissonlab/fiberlat/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/poissonlab/fiberlat/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/poissonlab/fiberlat/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Plain `go build` and `go install` fall back to the VCS metadata the
// toolchain embeds, so `fiberlat --version` stays meaningful either way.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Set via ldflags; left at the defaults for non-release builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	if Commit != "none" && Date != "unknown" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = s.Value
			}
		}
	}
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
