package internal

import (
	"fmt"
	"runtime"
)

// Version is the current version of cowatch.
// This should be updated with each release.
const Version = "0.3.0"

// VersionString renders the full version line for the -version flag.
func VersionString() string {
	return fmt.Sprintf("cowatch v%s (%s/%s, %s)", Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}
