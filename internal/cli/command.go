package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/grabproc/internal/grabproc"
)

// ErrUsage is returned when the positional arguments are missing or malformed.
var ErrUsage = errors.New("expected <src-dir> <dst-dir>")

// CLI represents the command-line interface.
type CLI struct {
	version string
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a new CLI instance with the given version, writing to stdout and stderr.
func New(version string, stdout, stderr io.Writer) CLI {
	return CLI{version: version, stdout: stdout, stderr: stderr}
}

// Command builds the root command.
//
//nolint:funlen // Flag definitions
func (c CLI) Command() *cobra.Command {
	var (
		options grabproc.Options
		output  string
		version bool
		usage   bool
	)

	allowedOutputs := []string{"table", "json"}

	cmd := &cobra.Command{
		Use:   "grabproc [flags] <src-dir> <dst-dir>",
		Short: "Collect images from proc/ subdirectories into a parallel directory tree",
		Long: heredoc.Doc(`
			grabproc collects the processed images stored in "proc" subdirectories
			into a new directory tree that mirrors the source layout.

			A photo collection organized by year and event, for example

			  photos/2014/0704 - fireworks/proc/a.jpg

			is copied to

			  <dst-dir>/2014/0704 - fireworks/a.jpg

			Only .jpg, .jpeg, .png, .tif and .tiff files are collected (override with --ext).
			Files whose copy already exists with the same size and is not older are skipped.
		`),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if usage {
				return cmd.Help()
			}

			if version {
				fmt.Fprintln(c.stdout, c.version)

				return nil
			}

			if len(args) != 2 { //nolint:mnd // src and dst
				cmd.SetOut(c.stderr)
				_ = cmd.Usage()

				return ErrUsage
			}

			if !slices.Contains(allowedOutputs, output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", output, allowedOutputs)
			}

			options.Source = args[0]
			options.Dest = args[1]

			return c.logic(cmd.Context(), options, output)
		},
	}

	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)

	flags := cmd.Flags()
	flags.SortFlags = false

	flags.BoolVarP(&options.Verbose, "verbose", "v", false, "Use verbose output")
	flags.StringSliceVarP(
		&options.Extensions,
		"ext",
		"x",
		grabproc.DefaultExtensions,
		"Image extensions to collect (e.g., .jpg,.png)",
	)
	flags.StringVarP(&output, "output", "o", "table",
		"Statistics format: table (printed with --verbose) or json (always printed)")
	flags.BoolVarP(&options.DryRun, "dry-run", "n", false, "Report what would be copied without writing")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	flags.BoolVar(&version, "version", false, "Show version and exit")
	flags.BoolVarP(&usage, "usage", "?", false, "Show usage and exit")

	_ = flags.MarkHidden("usage")

	return cmd
}

// Execute runs the CLI with the provided arguments.
func (c CLI) Execute(ctx context.Context, args []string) error {
	cmd := c.Command()
	cmd.SetArgs(args)

	return cmd.ExecuteContext(ctx)
}
