package discovery

import "errors"

// Sentinel errors for source discovery. They are wrapped in config-category
// classified errors so the CLI reports them as environment problems.
var (
	// ErrRootNotFound indicates a configured source root does not exist.
	ErrRootNotFound = errors.New("source root not found")

	// ErrRootNotDir indicates a configured source root is not a directory.
	ErrRootNotDir = errors.New("source root is not a directory")

	// ErrWalkFailed indicates filesystem traversal of a source root failed.
	ErrWalkFailed = errors.New("source directory walk failed")
)
