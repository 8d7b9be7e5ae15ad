// Package main is the entry point for the lazyplaylist application.
package main

import (
	"context"
	"os"

	"github.com/chmouel/lazyplaylist/internal/bootstrap"
	"github.com/chmouel/lazyplaylist/internal/buildinfo"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(buildinfo.Info{Version: version, Commit: commit, Date: date, BuiltBy: builtBy})
	buildinfo.Enrich()

	os.Exit(bootstrap.Run(context.Background(), os.Args))
}
