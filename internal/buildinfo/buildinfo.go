// Package buildinfo exposes the build metadata stamped in via ldflags.
package buildinfo

import (
	"fmt"
	"io"
)

// Set at build time:
//
//	go build -ldflags "-X .../internal/buildinfo.buildVersion=v1.0.0 ..."
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

// PrintBuildData writes the version, date and commit of this binary to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", buildVersion)
	fmt.Fprintf(w, "Build date: %s\n", buildDate)
	fmt.Fprintf(w, "Build commit: %s\n", buildCommit)
}
