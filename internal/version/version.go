package version

import (
	"fmt"
	"runtime/debug"
)

// Version is the current semantic version
const Version = "0.3.0"

// Build metadata, set with -ldflags "-X github.com/standardbeagle/termshield/internal/version.GitCommit=..."
var (
	BuildDate = "development"
	GitCommit = "unknown"
)

// Info returns version information as a string
func Info() string {
	return Version
}

// FullInfo returns detailed version information, including the Go toolchain
// the binary was built with when build info is available.
func FullInfo() string {
	goVersion := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
	}
	return fmt.Sprintf("termshield %s (commit: %s, built: %s, %s)", Version, GitCommit, BuildDate, goVersion)
}
