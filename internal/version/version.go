// Package version exposes build identification for the expensa binary.
package version

import "fmt"

// Overridden at build time via -ldflags "-X ...".
var (
	Version = "0.1.0"
	Commit  = "dev"
)

// String returns the human-readable version line printed by --version.
func String() string {
	return fmt.Sprintf("expensa %s (%s)", Version, Commit)
}
