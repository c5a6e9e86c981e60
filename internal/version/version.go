// Package version reports the build version of smarthome-dash.
package version

import "runtime/debug"

// Version is the release version. It can be overridden at build time using
// -ldflags "-X github.com/cristianoliveira/smarthome-dash/internal/version.Version=...".
var Version = "0.1.0"

// Commit is the git commit hash. When not set through ldflags it is read
// from the VCS stamp of the build, if any.
var Commit = "unknown"

func init() {
	if Commit != "unknown" {
		return
	}
	if rev := vcsRevision(); rev != "" {
		Commit = rev
	}
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}

// String returns the full version string including the commit hash if available.
func String() string {
	if Commit != "unknown" && Commit != "" {
		return Version + "+" + Commit
	}
	return Version
}

// UserAgent identifies the dashboard in requests to the backend.
func UserAgent() string {
	return "smarthome-dash/" + String()
}
