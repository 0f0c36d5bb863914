// Package version exposes build version metadata.
package version

import (
	"runtime"
	"runtime/debug"
)

var version = "dev"

// Version returns the current version string, with the VCS revision suffix
// when built from source.
func Version() string {
	if rev := Revision(); rev != "" {
		return version + " (" + rev + ")"
	}
	return version
}

// RawVersion returns the semantic version string without any suffix.
func RawVersion() string {
	return version
}

// Revision returns the short VCS revision from build info, if available.
func Revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			if len(setting.Value) > 12 {
				return setting.Value[:12]
			}
			return setting.Value
		}
	}
	return ""
}

// GoVersion returns the Go toolchain version used for the build.
func GoVersion() string {
	return runtime.Version()
}
