// Package version provides application version information.
// The version can be set at build time using ldflags:
//
//	go build -ldflags "-X github.com/poslogithub/magic-league-generator/internal/version.Version=v1.2.3"
package version

import "fmt"

// Version is the application version. It defaults to "dev" and can be
// overridden at build time using ldflags.
var Version = "dev"

// Commit is the source revision, set at build time like Version.
var Commit = ""

// String returns the version with the commit when one is known.
func String() string {
	if Commit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Commit)
}

// UserAgent returns the User-Agent sent to card data services.
func UserAgent() string {
	return "MagicLeagueGenerator/" + Version
}
