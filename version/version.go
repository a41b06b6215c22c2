// Package version holds build metadata injected at link time.
package version

import "runtime"

// Set via ldflags at build time, for example:
//
//	go build -ldflags "-X github.com/jackzampolin/batchlabel/version.GitRelease=v0.1.0"
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
	GoInfo        = runtime.Version()
)
