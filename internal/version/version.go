// Package version holds build-time identification for xgohook, set via
// -ldflags at release build time.
package version

// Version is overridden at build time: -ldflags "-X
// github.com/zboralski/xgohook/internal/version.Version=v1.2.3".
var Version = "dev"

// Commit is the short VCS commit hash, overridden the same way.
var Commit = "none"

// String renders the version for `xgohook version`.
func String() string {
	return Version + " (" + Commit + ")"
}
