package grabproc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charlievieth/fastwalk"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// logger provides conditional output.
type logger struct {
	enabled bool
	out     io.Writer
}

// printf prints output if logging is enabled.
func (l logger) printf(format string, args ...any) {
	if l.enabled && l.out != nil {
		fmt.Fprintf(l.out, format, args...)
	}
}

// walker carries the state of a single run through the walk callbacks.
type walker struct {
	src, dst   string
	exts       []string
	dryRun     bool
	collector  *collector
	debug      logger
	verbose    logger
	hook       func(Stats)
	interval   time.Duration
	lastReport time.Time
}

// report invokes the progress hook if the interval has elapsed since the previous call.
func (w *walker) report() {
	if w.hook == nil {
		return
	}

	if now := time.Now(); now.Sub(w.lastReport) >= w.interval {
		w.lastReport = now
		w.hook(w.collector.snapshot())
	}
}

// handleProcDir copies the images of one proc directory to its mirrored destination.
func (w *walker) handleProcDir(procDir string) error {
	images, err := ListImages(procDir, w.exts)
	if err != nil {
		w.debug.printf("[debug]: skipping unreadable proc dir %s: %v\n", procDir, err)

		return nil
	}

	w.collector.procDir(len(images))

	if len(images) == 0 {
		w.debug.printf("[debug]: no images in proc dir: %s\n", procDir)

		return nil
	}

	w.verbose.printf("Proc Dir: [%s] (%d images)\n", procDir, len(images))

	destDir, err := MapDestination(w.dst, MappedSegments(w.src, procDir), w.dryRun)
	if err != nil {
		return err
	}

	for _, img := range images {
		srcPath := filepath.Join(procDir, img.Name())
		dstPath := filepath.Join(destDir, img.Name())

		existing, err := statDest(dstPath)
		if err != nil {
			return err
		}

		if !NeedsCopy(img, existing) {
			w.debug.printf("[debug]: duplicate: %s\n", dstPath)
			w.collector.duplicate()

			continue
		}

		w.debug.printf("[debug]: copying %s -> %s\n", srcPath, dstPath)

		if !w.dryRun {
			if err := CopyFile(srcPath, dstPath); err != nil {
				return err
			}
		}

		w.collector.copied(img.Size())
		w.report()
	}

	return nil
}

// visit is the fastwalk callback. The root is counted by Run and skipped here.
//
//nolint:varnamelen // d is standard for DirEntry
func (w *walker) visit(ctx context.Context, path string, d fs.DirEntry, err error) error {
	if err != nil {
		w.debug.printf("[debug]: error accessing path %s: %v\n", path, err)

		return nil // Unreadable entries count as empty
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if path == w.src || !d.IsDir() {
		return nil
	}

	if !readable(path) {
		w.debug.printf("[debug]: skipping unreadable directory: %s\n", path)

		return filepath.SkipDir
	}

	if strings.EqualFold(d.Name(), ProcDirName) {
		if err := w.handleProcDir(path); err != nil {
			return err
		}

		return filepath.SkipDir
	}

	w.collector.dirSearched()
	w.report()

	return nil
}

// readable reports whether the directory at path can be opened for listing.
func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}

	_ = f.Close()

	return true
}

// canonical returns the absolute path of p with symlinks resolved.
func canonical(p string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks: %w", err)
	}

	return resolved, nil
}

// prepareSource validates the source directory and returns its canonical path.
func prepareSource(path string) (string, error) {
	if statInfo, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: source path does not exist: %s", ErrArgument, path)
	} else if err != nil {
		return "", fmt.Errorf("%w: accessing source path %q: %w", ErrArgument, path, err)
	} else if !statInfo.IsDir() {
		return "", fmt.Errorf("%w: source path is not a directory: %s", ErrArgument, path)
	}

	src, err := canonical(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrArgument, err)
	}

	return src, nil
}

// prepareDest validates the destination directory, creating it unless dryRun is set,
// and returns its canonical path.
func prepareDest(path string, dryRun bool) (string, error) {
	statInfo, err := os.Stat(path)

	switch {
	case errors.Is(err, fs.ErrNotExist) && dryRun:
		abs, err := filepath.Abs(filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrArgument, err)
		}

		return abs, nil
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(path, 0o755); err != nil { //nolint:mnd // Standard directory mode
			return "", fmt.Errorf("%w: destination path does not exist and unable to create it (%s): %w",
				ErrArgument, path, err)
		}
	case err != nil:
		return "", fmt.Errorf("%w: accessing destination path %q: %w", ErrArgument, path, err)
	case !statInfo.IsDir():
		return "", fmt.Errorf("%w: destination path is not a directory: %s", ErrArgument, path)
	}

	dst, err := canonical(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrArgument, err)
	}

	return dst, nil
}

// Run searches opt.Source for proc directories and copies their images into a
// parallel tree under opt.Dest, returning the run statistics.
//
// The walk is depth-first and single-threaded. The first error aborts it;
// files copied before the error remain in place.
//
// Progress snapshots are sent to progressHook, if provided, at most once per
// opt.ProgressInterval.
func Run(ctx context.Context, opt Options, progressHook func(Stats)) (*Stats, error) {
	out := opt.Log
	if out == nil {
		out = io.Discard
	}

	src, err := prepareSource(opt.Source)
	if err != nil {
		return nil, err
	}

	dst, err := prepareDest(opt.Dest, opt.DryRun)
	if err != nil {
		return nil, err
	}

	interval := opt.ProgressInterval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	w := &walker{
		src:       src,
		dst:       dst,
		exts:      NormalizeExtensions(opt.Extensions),
		dryRun:    opt.DryRun,
		collector: &collector{},
		debug:     logger{enabled: opt.Debug, out: out},
		verbose:   logger{enabled: opt.Verbose, out: out},
		hook:      progressHook,
		interval:  interval,
	}

	w.verbose.printf("Source Path: [%s]\n", src)
	w.verbose.printf("Destination Path: [%s]\n", dst)

	w.debug.printf("[debug]: image extensions:\n")

	for _, ext := range w.exts {
		w.debug.printf("[debug]:   - %s\n", ext)
	}

	start := time.Now()

	w.collector.dirSearched()

	// A single worker keeps the callbacks sequential; symlinks are not followed,
	// so the walk cannot cycle.
	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: 1,
	}

	walkErr := fastwalk.Walk(conf, src, func(path string, d fs.DirEntry, err error) error {
		return w.visit(ctx, path, d, err)
	})
	if walkErr != nil {
		return nil, walkErr
	}

	stats := w.collector.snapshot()

	stats.SourceRoot = src
	stats.DestRoot = dst
	stats.DryRun = opt.DryRun
	stats.Elapsed = time.Since(start)

	return &stats, nil
}
