// Package version reports the build version. Release builds set Version
// with -ldflags "-X bibleidx/internal/version.Version=v1.2.3".
package version

import "runtime/debug"

var Version = ""

func String() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
