package grabproc

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fireworks builds src/2014/0704 - fireworks/proc with one image and one note.
func fireworks(t *testing.T) (src, dst string) {
	t.Helper()

	root := t.TempDir()
	src = filepath.Join(root, "src")
	dst = filepath.Join(root, "dst")

	proc := filepath.Join(src, "2014", "0704 - fireworks", "proc")
	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)

	writeFile(t, filepath.Join(proc, "a.jpg"), "0123456789", mtime)
	writeFile(t, filepath.Join(proc, "notes.txt"), "not an image", mtime)

	return src, dst
}

func run(t *testing.T, src, dst string) *Stats {
	t.Helper()

	stats, err := Run(context.Background(), Options{Source: src, Dest: dst}, nil)
	require.NoError(t, err)

	return stats
}

func TestRunFireworks(t *testing.T) {
	src, dst := fireworks(t)

	stats := run(t, src, dst)

	event := filepath.Join(dst, "2014", "0704 - fireworks")

	info, err := os.Stat(filepath.Join(event, "a.jpg"))
	require.NoError(t, err)
	assert.EqualValues(t, 10, info.Size())
	assert.NoFileExists(t, filepath.Join(event, "notes.txt"))

	assert.GreaterOrEqual(t, stats.DirsSearched, int64(3))
	assert.EqualValues(t, 1, stats.ProcDirs)
	assert.EqualValues(t, 1, stats.ImagesFound)
	assert.EqualValues(t, 1, stats.ImagesCopied)
	assert.EqualValues(t, 0, stats.DuplicateImages)
	assert.EqualValues(t, 10, stats.BytesCopied)
}

func TestRunIsIdempotent(t *testing.T) {
	src, dst := fireworks(t)

	first := run(t, src, dst)
	second := run(t, src, dst)

	assert.EqualValues(t, 0, second.ImagesCopied)
	assert.Equal(t, first.ImagesFound, second.DuplicateImages)
}

func TestRunOverwritesChangedImage(t *testing.T) {
	src, dst := fireworks(t)

	run(t, src, dst)

	image := filepath.Join(src, "2014", "0704 - fireworks", "proc", "a.jpg")
	writeFile(t, image, "0123456789abcdef", time.Now())

	stats := run(t, src, dst)

	assert.EqualValues(t, 1, stats.ImagesCopied)
	assert.EqualValues(t, 0, stats.DuplicateImages)

	data, err := os.ReadFile(filepath.Join(dst, "2014", "0704 - fireworks", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", string(data))
}

func TestRunDestinationConflict(t *testing.T) {
	src, dst := fireworks(t)

	require.NoError(t, os.MkdirAll(dst, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "2014"), []byte("file"), 0o644))

	stats, err := Run(context.Background(), Options{Source: src, Dest: dst}, nil)
	require.ErrorIs(t, err, ErrDestinationConflict)
	assert.Nil(t, stats)

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunSkipsProcWithoutImages(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")

	writeFile(t, filepath.Join(src, "2015", "empty", "proc", "edit.psd"), "psd", time.Now())

	stats := run(t, src, dst)

	assert.EqualValues(t, 1, stats.ProcDirs)
	assert.EqualValues(t, 0, stats.ImagesFound)
	assert.NoDirExists(t, filepath.Join(dst, "2015"))
}

func TestRunCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")

	now := time.Now()
	writeFile(t, filepath.Join(src, "2016", "trip", "Proc", "IMG_1.JPG"), "a", now)
	writeFile(t, filepath.Join(src, "2016", "party", "PROC", "img_2.Tiff"), "b", now)

	stats := run(t, src, dst)

	assert.EqualValues(t, 2, stats.ProcDirs)
	assert.EqualValues(t, 2, stats.ImagesCopied)
	assert.FileExists(t, filepath.Join(dst, "2016", "trip", "IMG_1.JPG"))
	assert.FileExists(t, filepath.Join(dst, "2016", "party", "img_2.Tiff"))
}

func TestRunDoesNotDescendIntoProc(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")

	now := time.Now()
	writeFile(t, filepath.Join(src, "event", "proc", "a.jpg"), "a", now)
	writeFile(t, filepath.Join(src, "event", "proc", "nested", "proc", "b.jpg"), "b", now)

	stats := run(t, src, dst)

	assert.EqualValues(t, 1, stats.ProcDirs)
	assert.EqualValues(t, 1, stats.ImagesCopied)
	assert.FileExists(t, filepath.Join(dst, "event", "a.jpg"))
	assert.NoDirExists(t, filepath.Join(dst, "event", "proc"))
}

func TestRunSkipsUnreadableDirectories(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")

	now := time.Now()
	writeFile(t, filepath.Join(src, "2014", "event", "proc", "a.jpg"), "a", now)
	writeFile(t, filepath.Join(src, "2014", "locked", "b.jpg"), "b", now)
	writeFile(t, filepath.Join(src, "2015", "trip", "proc", "c.jpg"), "c", now)

	for _, dir := range []string{
		filepath.Join(src, "2014", "locked"),
		filepath.Join(src, "2015", "trip", "proc"),
	} {
		require.NoError(t, os.Chmod(dir, 0o000))
		t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })
	}

	stats := run(t, src, dst)

	// root, 2014, event, 2015, trip
	assert.EqualValues(t, 5, stats.DirsSearched)
	assert.EqualValues(t, 1, stats.ProcDirs)
	assert.EqualValues(t, 1, stats.ImagesCopied)
	assert.FileExists(t, filepath.Join(dst, "2014", "event", "a.jpg"))
	assert.NoDirExists(t, filepath.Join(dst, "2015"))
}

func TestRunCustomExtensions(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")

	now := time.Now()
	writeFile(t, filepath.Join(src, "event", "proc", "a.jpg"), "a", now)
	writeFile(t, filepath.Join(src, "event", "proc", "b.heic"), "b", now)

	stats, err := Run(context.Background(), Options{Source: src, Dest: dst, Extensions: []string{"heic"}}, nil)
	require.NoError(t, err)

	assert.EqualValues(t, 1, stats.ImagesCopied)
	assert.FileExists(t, filepath.Join(dst, "event", "b.heic"))
	assert.NoFileExists(t, filepath.Join(dst, "event", "a.jpg"))
}

func TestRunDryRun(t *testing.T) {
	src, dst := fireworks(t)

	stats, err := Run(context.Background(), Options{Source: src, Dest: dst, DryRun: true}, nil)
	require.NoError(t, err)

	assert.True(t, stats.DryRun)
	assert.EqualValues(t, 1, stats.ImagesCopied)
	assert.NoDirExists(t, dst)
}

func TestRunVerboseOutput(t *testing.T) {
	src, dst := fireworks(t)

	var buf bytes.Buffer

	_, err := Run(context.Background(), Options{Source: src, Dest: dst, Verbose: true, Log: &buf}, nil)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Source Path: [")
	assert.Contains(t, buf.String(), "Destination Path: [")
	assert.Contains(t, buf.String(), "Proc Dir: [")
	assert.Contains(t, buf.String(), "(1 images)")
}

func TestRunProgressHook(t *testing.T) {
	src, dst := fireworks(t)

	var calls int

	_, err := Run(context.Background(), Options{Source: src, Dest: dst}, func(Stats) { calls++ })
	require.NoError(t, err)

	assert.Positive(t, calls)
}

func TestRunArgumentErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name string
		src  string
		dst  string
	}{
		{name: "missing source", src: filepath.Join(root, "missing"), dst: filepath.Join(root, "dst")},
		{name: "source is a file", src: file, dst: filepath.Join(root, "dst")},
		{name: "destination is a file", src: root, dst: file},
		{name: "destination cannot be created", src: root, dst: filepath.Join(file, "dst")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), Options{Source: tt.src, Dest: tt.dst}, nil)
			require.ErrorIs(t, err, ErrArgument)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	src, dst := fireworks(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{Source: src, Dest: dst}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
