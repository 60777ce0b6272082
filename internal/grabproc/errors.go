package grabproc

import "errors"

var (
	// ErrArgument reports an invalid source or destination path.
	ErrArgument = errors.New("invalid argument")
	// ErrDestinationConflict reports a destination path segment that exists but is not a directory.
	ErrDestinationConflict = errors.New("destination path exists but is not a directory")
	// ErrDirectoryCreation reports a destination subdirectory that could not be created.
	ErrDirectoryCreation = errors.New("failed to create destination subdir")
	// ErrCopy reports an I/O failure while copying an image.
	ErrCopy = errors.New("copy failed")
)
