// Package version carries build metadata stamped via ldflags.
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns a one-line human-readable version description.
func String() string {
	return fmt.Sprintf("rasterloc %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
