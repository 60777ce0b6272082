// Package grabproc collects processed images into a mirrored directory tree.
//
// It walks a source tree using fastwalk, stops at every directory named
// "proc" (case-insensitive), and copies the image files found there to the
// same relative location under a destination root, minus the "proc" segment.
// Files whose destination copy has the same size and is not older are skipped.
package grabproc
