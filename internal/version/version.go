// Package version carries build information injected with -ldflags.
package version

import "fmt"

var (
	// Version is the release tag, e.g. "v1.2.0".
	Version = "dev"
	// Commit is the short VCS revision.
	Commit = ""
	// Date is the build timestamp.
	Date = ""
)

// String renders the build information on one line.
func String() string {
	s := Version
	if Commit != "" {
		s += " (" + Commit + ")"
	}
	if Date != "" {
		s = fmt.Sprintf("%s built %s", s, Date)
	}
	return s
}
