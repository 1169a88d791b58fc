package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version, cli.Commit, cli.Date = version, commit, date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode separates setup mistakes from failures reported by the service.
func exitCode(err error) int {
	switch {
	case faults.IsConfig(err), faults.IsValidation(err), faults.IsParse(err):
		return 2
	default:
		return 1
	}
}
