// Package main provides the entry point for the mltnsync CLI tool.
package main

import (
	"context"
	"os"

	"github.com/lucab3/ml-tn-sync/cmd/mltnsync/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application, err := app.New(version, commit, date)
	if err != nil {
		app.ExitOnError(err)
	}

	// Cancel the run on SIGINT/SIGTERM so in-flight updates are recorded
	// before exit.
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		app.ExitOnError(err)
	}
}
