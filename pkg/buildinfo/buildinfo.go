package buildinfo

import (
	"runtime"
)

// These vars are set at build time via ldflags:
// -X github.com/seihyo/seihyo-cli/pkg/buildinfo.Version=v0.3.1
// -X github.com/seihyo/seihyo-cli/pkg/buildinfo.Commit=4c1f9aa
// -X github.com/seihyo/seihyo-cli/pkg/buildinfo.BuildTime=2026-08-30T10:30:00Z
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info holds build information for the CLI.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the build info.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns a human-readable one-liner like "v0.3.1 (4c1f9aa, 2026-08-30T10:30:00Z)"
func String() string {
	return Version + " (" + Commit + ", " + BuildTime + ")"
}
