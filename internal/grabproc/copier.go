package grabproc

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// NormalizeExtensions lowercases exts and ensures each has a leading dot.
// Quotes and blanks are stripped; an empty result falls back to DefaultExtensions.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))

	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(strings.Trim(e, "'\"")))
		if e == "" || e == "." {
			continue
		}

		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}

		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}

	if len(out) == 0 {
		return slices.Clone(DefaultExtensions)
	}

	return out
}

// isImage checks the file name against the lowercase extension list.
func isImage(name string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(name)))
}

// ListImages returns the regular files directly inside dir whose extension is in exts.
// It fails only if dir itself cannot be read.
func ListImages(dir string, exts []string) ([]fs.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	images := make([]fs.FileInfo, 0, len(entries))

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isImage(entry.Name(), exts) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		images = append(images, info)
	}

	return images, nil
}

// NeedsCopy reports whether src should be copied over dst.
// dst may be nil when the destination does not exist.
// Only size and modification time are compared, never content. Times are
// compared in milliseconds so destinations with coarser timestamps stay unchanged.
func NeedsCopy(src, dst fs.FileInfo) bool {
	if dst == nil {
		return true
	}

	return src.Size() != dst.Size() || src.ModTime().UnixMilli() > dst.ModTime().UnixMilli()
}

// statDest returns the destination file info, or nil if it does not exist.
func statDest(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: stat %q: %w", ErrCopy, path, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%w (%s)", ErrDestinationConflict, path)
	}

	return info, nil
}

// CopyFile copies src to dst, preserving the source permission bits and modification time.
//
// The content is written to a temporary file next to dst and renamed into place,
// so a failed copy never leaves a partial file under the destination name.
func CopyFile(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: stat %q: %w", ErrCopy, src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: opening %q: %w", ErrCopy, src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".grabproc-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file for %q: %w", ErrCopy, dst, err)
	}

	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return fmt.Errorf("%w: copying %q to %q: %w", ErrCopy, src, dst, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %q: %w", ErrCopy, tmpName, err)
	}

	if err = os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return fmt.Errorf("%w: chmod %q: %w", ErrCopy, tmpName, err)
	}

	if err = os.Chtimes(tmpName, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("%w: setting times on %q: %w", ErrCopy, tmpName, err)
	}

	if err = os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("%w: renaming %q to %q: %w", ErrCopy, tmpName, dst, err)
	}

	return nil
}
