// Package version reports the build of tekst. The variables are set with
// -ldflags "-X github.com/bulga138/tekst/version.Version=..." by release
// builds; plain `go install` builds fall back to the module build info.
package version

import (
	"runtime/debug"
	"strings"
	"sync"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

var fromBuildInfo sync.Once

// fill replaces unset values with what the Go toolchain embedded.
func fill() {
	fromBuildInfo.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if Version == "dev" && strings.HasPrefix(info.Main.Version, "v") {
			Version = strings.TrimPrefix(info.Main.Version, "v")
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if Commit == "none" && len(s.Value) >= 7 {
					Commit = s.Value[:7]
				}
			case "vcs.time":
				if BuildTime == "unknown" {
					BuildTime = s.Value
				}
			}
		}
	})
}

func GetVersion() string {
	fill()
	return Version
}

// GetFullVersion is the --version string.
func GetFullVersion() string {
	fill()
	return Version + " (" + Commit + ") built at " + BuildTime
}
