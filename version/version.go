package version

import (
	"fmt"

	"go.uber.org/atomic"
)

// Build information, set with -ldflags "-X github.com/SergeiSkv/rulecheck/version.Version=..."
var (
	Version    = "v0.1.0"
	CommitHash = "n/a"
	BuiltAt    = "n/a"
)

// Interrupted is set once a termination signal cancels the running analysis
var Interrupted = atomic.NewBool(false)

// String formats the build information for the version command
func String() string {
	return fmt.Sprintf("rulecheck version %s\nCommit: %s\nBuilt: %s\n", Version, CommitHash, BuiltAt)
}
