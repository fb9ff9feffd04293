// Package version holds build metadata injected at link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/runbuild/internal/version.Version=v0.3.0"
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is the release version.
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by 'runbuild version'. When no
// commit was injected, the VCS revision recorded by the Go toolchain is used.
func String() string {
	commit := GitCommit
	if commit == "unknown" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					commit = s.Value
				}
			}
		}
	}
	return fmt.Sprintf("runbuild %s (commit %s, built %s)", Version, commit, BuildTime)
}
