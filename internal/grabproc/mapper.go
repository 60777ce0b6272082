package grabproc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// splitPath splits a canonical path into its separator-delimited segments.
func splitPath(path string) []string {
	return strings.Split(filepath.Clean(path), string(filepath.Separator))
}

// CommonPrefixLen returns the number of leading path segments shared by a and b.
func CommonPrefixLen(a, b string) int {
	sa, sb := splitPath(a), splitPath(b)

	n := 0
	for n < len(sa) && n < len(sb) && sa[n] == sb[n] {
		n++
	}

	return n
}

// MappedSegments returns the segments of procDir below its common ancestor with root,
// excluding the trailing proc segment itself.
//
// For root "/photos" and procDir "/photos/2014/0704 - fireworks/proc" it returns
// ["2014", "0704 - fireworks"].
func MappedSegments(root, procDir string) []string {
	segs := splitPath(procDir)
	common := CommonPrefixLen(root, procDir)

	last := len(segs) - 1
	if common >= last {
		return nil
	}

	out := make([]string, last-common)
	copy(out, segs[common:last])

	return out
}

// MapDestination materializes segments one level at a time under destRoot and returns the leaf directory.
// With dryRun set nothing is created, but existing segments are still checked for conflicts.
func MapDestination(destRoot string, segments []string, dryRun bool) (string, error) {
	parent := destRoot

	for _, seg := range segments {
		dir := filepath.Join(parent, seg)
		parent = dir

		info, err := os.Stat(dir)

		switch {
		case err == nil && info.IsDir():
			continue
		case err == nil:
			return "", fmt.Errorf("%w (%s)", ErrDestinationConflict, dir)
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("%w (%s): %w", ErrDirectoryCreation, dir, err)
		case dryRun:
			continue
		}

		if err := os.Mkdir(dir, 0o755); err != nil { //nolint:mnd // Standard directory mode
			return "", fmt.Errorf("%w (%s): %w", ErrDirectoryCreation, dir, err)
		}
	}

	return parent, nil
}
