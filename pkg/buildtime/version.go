// Package buildtime holds metadata fixed when the binary is built.
//
// VERSION and revision files are embedded. Release builds overwrite them before `go build`.
package buildtime

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

//go:embed revision
var revision string

func init() {
	version = strings.TrimSpace(version)
	revision = strings.TrimSpace(revision)
}

// Version of flowcfg.
func Version() string {
	return version
}

// Revision is the git commit which flowcfg is built from.
func Revision() string {
	return revision
}

func VersionString() string {
	return version + " (commit: " + revision + ")"
}
