// Package version carries the build version reported by the CLI, the OTel
// resource and the startup log.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/tbourn/go-console-navigator/internal/version.Version=1.2.3".
var Version = "dev"

// BuildVersion returns the version string for display.
func BuildVersion() string {
	return "navigator version " + Version
}
