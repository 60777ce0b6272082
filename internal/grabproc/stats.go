package grabproc

import (
	"io"
	"time"
)

// DefaultExtensions are the image extensions collected when none are configured.
//
//nolint:gochecknoglobals // Config constant
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".tif", ".tiff"}

// ProcDirName is the directory name, compared case-insensitively, that holds finished images.
const ProcDirName = "proc"

// Stats holds the counters for one collection run.
type Stats struct {
	// SourceRoot is the canonical source directory.
	SourceRoot string `json:"source_root"`
	// DestRoot is the canonical destination directory.
	DestRoot string `json:"dest_root"`
	// DirsSearched is the number of directories visited, including the root.
	DirsSearched int64 `json:"dirs_searched"`
	// ProcDirs is the number of proc directories found.
	ProcDirs int64 `json:"proc_dirs"`
	// ImagesFound is the number of image files found in proc directories.
	ImagesFound int64 `json:"images_found"`
	// ImagesCopied is the number of images copied (or, in dry-run mode, that would be).
	ImagesCopied int64 `json:"images_copied"`
	// DuplicateImages is the number of images skipped as unchanged.
	DuplicateImages int64 `json:"duplicate_images"`
	// BytesCopied is the cumulative size of copied images.
	BytesCopied int64 `json:"bytes_copied"`
	// DryRun indicates that nothing was written.
	DryRun bool `json:"dry_run"`
	// Elapsed is the total time taken for the run.
	Elapsed time.Duration `json:"elapsed"`
}

// Options configures a collection run.
type Options struct {
	// Source is the directory to scan.
	Source string
	// Dest is the directory receiving copies. Created if absent.
	Dest string
	// Extensions to collect, with or without leading dot (empty = DefaultExtensions).
	Extensions []string
	// Verbose enables per-proc-directory progress lines and end-of-run statistics.
	Verbose bool
	// DryRun reports what would be copied without writing anything.
	DryRun bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
	// Log receives verbose and debug output. Defaults to io.Discard.
	Log io.Writer
}

// collector accumulates run statistics.
// fastwalk runs with a single worker, so callbacks never overlap and no locking is needed.
type collector struct {
	stats Stats
}

func (c *collector) dirSearched() {
	c.stats.DirsSearched++
}

func (c *collector) procDir(images int) {
	c.stats.ProcDirs++
	c.stats.ImagesFound += int64(images)
}

func (c *collector) copied(size int64) {
	c.stats.ImagesCopied++
	c.stats.BytesCopied += size
}

func (c *collector) duplicate() {
	c.stats.DuplicateImages++
}

// snapshot returns a copy of the current counters.
func (c *collector) snapshot() Stats {
	return c.stats
}
