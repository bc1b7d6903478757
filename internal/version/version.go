// Package version holds build metadata for the regtidy binary.
//
// Variables in this package are set at build time using ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/regtidy/internal/version.Version=1.0.0 ..."
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build-time variables set via ldflags
var (
	// Version is the semantic version (e.g., "1.0.0" or "1.0.0-dev.5+abc123")
	Version = "dev"

	// Commit is the git commit SHA
	Commit = "unknown"

	// Dirty indicates if the working tree had uncommitted changes
	Dirty = "false"

	// BuildDate is the UTC build timestamp in RFC3339 format
	BuildDate = "unknown"
)

// Info is the version report served by `regtidy version --json` and the
// /health endpoint.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Dirty     bool   `json:"dirty" yaml:"dirty"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Dirty:     Dirty == "true",
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns the version with a "-dirty" suffix for modified trees.
func String() string {
	if Dirty == "true" {
		return Version + "-dirty"
	}
	return Version
}

// String returns the multi-line report printed by `regtidy version`.
func (i Info) String() string {
	var sb strings.Builder
	v := i.Version
	if i.Dirty {
		v += "-dirty"
	}
	fmt.Fprintf(&sb, "regtidy %s\n", v)
	fmt.Fprintf(&sb, "  Commit:     %s\n", i.Commit)
	fmt.Fprintf(&sb, "  Built:      %s\n", i.BuildDate)
	fmt.Fprintf(&sb, "  Go version: %s\n", i.GoVersion)
	fmt.Fprintf(&sb, "  OS/Arch:    %s", i.Platform)
	return sb.String()
}
