// Package version identifies the SDK release.
package version

import "fmt"

// SDK version components.
const (
	Major = 0
	Minor = 3
	Patch = 0
)

// String returns the SDK version as "major.minor.patch".
func String() string {
	return fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
}

// UserAgent returns the User-Agent value SDK HTTP requests may carry.
func UserAgent() string {
	return "fleetdash-go/" + String()
}
