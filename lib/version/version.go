// Package version holds the lrviz release version.
package version

import "regexp"

// Version is set with -ldflags on release builds.
var Version = "v0.1.0-HEAD"

var semver = regexp.MustCompile(`[0-9]+\.[0-9]+\.[0-9]+`)

// OnlyNumbers strips everything but the major.minor.patch triple from Version.
func OnlyNumbers() string {
	return semver.FindString(Version)
}
