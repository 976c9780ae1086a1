// Package version exposes the build version embedded from the VERSION file.
package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var versionContent string

// Get returns the embedded version string, trimmed.
func Get() string {
	return strings.TrimSpace(versionContent)
}
