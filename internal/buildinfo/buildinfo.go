// Package buildinfo holds version information injected at build time via ldflags:
//
//	-X github.com/topstack/topstack/internal/buildinfo.Version=v0.3.0
package buildinfo

import "fmt"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Summary renders the version line printed by the CLI.
func Summary() string {
	commit := CommitHash
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("topstack %s (%s, built %s)", Version, commit, BuildDate)
}
