// Package version holds build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
)

// Populated via -ldflags at build time, e.g.:
//
//	go build -ldflags "-X github.com/desglose/desglose/version.GitRelease=v0.3.0"
var (
	// GitRelease is the release tag, or "dev" for untagged builds.
	GitRelease = "dev"

	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"

	// GitCommitDate is the commit date of GitCommit.
	GitCommitDate = "unknown"
)

// GoInfo describes the toolchain and platform of the running binary.
var GoInfo = fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
