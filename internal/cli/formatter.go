package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/grabproc/internal/grabproc"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs statistics in JSON format.
func PrintJSON(stats *grabproc.Stats, writer io.Writer) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs statistics in human-readable table format.
func PrintTable(stats *grabproc.Stats, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "Dirs Searched:\t%d\n", stats.DirsSearched)
	fmt.Fprintf(w, "Proc Dirs:\t%d\n", stats.ProcDirs)
	fmt.Fprintf(w, "Images Found:\t%d\n", stats.ImagesFound)

	if stats.DryRun {
		fmt.Fprintf(w, "Images To Copy:\t%d\n", stats.ImagesCopied)
	} else {
		fmt.Fprintf(w, "Images Copied:\t%d\n", stats.ImagesCopied)
	}

	fmt.Fprintf(w, "Duplicate Images:\t%d\n", stats.DuplicateImages)
	fmt.Fprintf(w, "Bytes Copied:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(stats.BytesCopied)), stats.BytesCopied) //nolint:gosec // Bytes is always positive

	fmt.Fprintf(w, "\nElapsed:\t%v\n", stats.Elapsed)

	return w.Flush()
}
