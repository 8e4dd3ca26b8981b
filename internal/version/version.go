package version

import (
	_ "embed"
	"strings"
)

//go:embed version.txt
var version string

// Get returns the release version, or "dev" for builds without one.
func Get() string {
	if v := strings.TrimSpace(version); v != "" {
		return v
	}
	return "dev"
}

func String() string {
	return "mdpipe " + Get()
}
