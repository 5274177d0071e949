// Package version reports the build version of venvsync.
package version

import "runtime/debug"

// version is set at build time with
// -ldflags "-X github.com/indaco/venvsync/internal/version.version=1.2.3".
var version = ""

// GetVersion returns the linker-provided version, the module version when
// installed with go install, or "dev".
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return trimV(info.Main.Version)
	}
	return "dev"
}

func trimV(v string) string {
	if len(v) > 0 && v[0] == 'v' {
		return v[1:]
	}
	return v
}
