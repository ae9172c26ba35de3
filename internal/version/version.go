package version

import "fmt"

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/rsttools/internal/version.Version=v0.3.0".
var Version = "dev"

// Build metadata, also injected through ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	if GitCommit == "unknown" {
		return fmt.Sprintf("rsttools %s", Version)
	}
	return fmt.Sprintf("rsttools %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
