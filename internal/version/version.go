// Package version records the build version stamped in at link time.
package version

// Version is overridden by -ldflags at release builds.
var Version = "dev"
