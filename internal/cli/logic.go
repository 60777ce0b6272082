package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/grabproc/internal/grabproc"
)

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

// logic runs the collection and prints the statistics in the requested format.
// JSON is always printed; the table only in verbose mode.
func (c CLI) logic(ctx context.Context, options grabproc.Options, output string) error {
	output = strings.ToLower(output)

	enableProgress := !options.Verbose &&
		!options.Debug &&
		isTerminal(c.stderr)

	// Keep stdout parseable when statistics are emitted as JSON.
	options.Log = c.stdout
	if output == "json" {
		options.Log = c.stderr
	}

	// Simple progress callback that prints directly to stderr
	var progressHook func(grabproc.Stats)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(c.stderr, "\033[?25l")
		defer fmt.Fprint(c.stderr, "\033[?25h")

		progressHook = func(s grabproc.Stats) {
			msg := fmt.Sprintf("Collecting… %d dirs, %d proc dirs, %d copied (%s), %d skipped",
				s.DirsSearched, s.ProcDirs, s.ImagesCopied,
				humanize.IBytes(uint64(s.BytesCopied)), //nolint:gosec // Bytes is always positive
				s.DuplicateImages)
			fmt.Fprintf(c.stderr, "\r\033[2K%s\r", msg)
		}
	}

	stats, err := grabproc.Run(ctx, options, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(c.stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	switch output {
	case "json":
		return PrintJSON(stats, c.stdout)
	case "table":
		if !options.Verbose {
			return nil
		}

		return PrintTable(stats, c.stdout)
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}
}
