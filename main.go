// Command grabproc collects images from "proc" subdirectories into a parallel directory tree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/idelchi/grabproc/internal/cli"
)

// version is set at build time.
//
//nolint:gochecknoglobals // Set by ldflags
var version = "unknown - unofficial & generated by unknown"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.New(version, os.Stdout, os.Stderr).Execute(ctx, os.Args[1:])

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
