// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

import "fmt"

// Set at build time via -ldflags "-X".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// VersionString is the one-line form printed by `mealprep version --short`.
func VersionString() string {
	if Sha == "" || Sha == "HEAD" {
		return Version
	}
	short := Sha
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s)", Version, short)
}
