// Package buildinfo holds the version metadata of the lazyplaylist binary.
// main receives it from the linker and hands it over with Set.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Info describes a build.
type Info struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
}

const (
	unsetCommit = "none"
	unsetValue  = "unknown"
)

var current = Info{Version: "dev", Commit: unsetCommit, Date: unsetValue, BuiltBy: unsetValue}

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Set replaces the build metadata.
func Set(info Info) {
	current = info
}

// Get returns the build metadata.
func Get() Info {
	return current
}

// Enrich fills the fields the linker left unset from the module build info:
// the VCS revision (suffixed with -dirty for modified trees), the VCS time and
// the Go version.
func Enrich() {
	info, ok := readBuildInfo()
	if !ok {
		return
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if current.Commit == unsetCommit {
		if rev := settings["vcs.revision"]; rev != "" {
			if settings["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			current.Commit = rev
		}
	}
	if current.Date == unsetValue {
		if t := settings["vcs.time"]; t != "" {
			current.Date = t
		}
	}
	if current.BuiltBy == unsetValue && info.GoVersion != "" {
		current.BuiltBy = info.GoVersion
	}
}

func (i Info) String() string {
	return fmt.Sprintf("lazyplaylist version %s\ncommit: %s\nbuilt at: %s\nbuilt by: %s", i.Version, i.Commit, i.Date, i.BuiltBy)
}
