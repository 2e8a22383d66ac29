// Package version holds build information for the lisle binary. The
// variables are overridden at link time:
//
//	go build -ldflags "-X lisle/internal/version.Version=0.3.0 -X lisle/internal/version.GitCommit=$(git rev-parse HEAD)"
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the runtime.
	Version = "0.1.0-dev"
	// GitCommit is the optional source revision.
	GitCommit = ""
	// BuildDate is the optional ISO-8601 build date.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Info is the machine-readable form printed by `lisle version --format json`.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current collects the build information.
func Current() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Pretty colours the major, minor and patch parts of Version. Colour
// follows color.NoColor.
func Pretty() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Full is Pretty plus commit, date and toolchain lines.
func Full() string {
	info := Current()
	var sb strings.Builder
	fmt.Fprintf(&sb, "lisle %s\n", Pretty())
	if info.GitCommit != "" {
		fmt.Fprintf(&sb, "commit: %s\n", info.GitCommit)
	}
	if info.BuildDate != "" {
		fmt.Fprintf(&sb, "built:  %s\n", info.BuildDate)
	}
	fmt.Fprintf(&sb, "go:     %s %s\n", info.GoVersion, info.Platform)
	return sb.String()
}
