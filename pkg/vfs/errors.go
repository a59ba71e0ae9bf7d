package vfs

import "errors"

// Errors shared by every backing store. Stores wrap these with context via
// fmt.Errorf("...: %w", err); callers match with errors.Is.
var (
	// ErrNotFound is returned when a path does not resolve to a node.
	ErrNotFound = errors.New("vfs: not found")

	// ErrAlreadyExists is returned when creating a node at an occupied path.
	ErrAlreadyExists = errors.New("vfs: already exists")

	// ErrNotADirectory is returned when a directory operation hits a file.
	ErrNotADirectory = errors.New("vfs: not a directory")

	// ErrNotAFile is returned when a file operation hits a non-file node.
	ErrNotAFile = errors.New("vfs: not a file")

	// ErrIsADirectory is returned when opening a directory as a file.
	ErrIsADirectory = errors.New("vfs: is a directory")

	// ErrDirectoryNotEmpty is returned when removing a populated directory.
	ErrDirectoryNotEmpty = errors.New("vfs: directory not empty")

	// ErrInvalidData is returned for malformed on-disk structures.
	ErrInvalidData = errors.New("vfs: invalid data")

	// ErrInvalidParameter is returned for out-of-range arguments.
	ErrInvalidParameter = errors.New("vfs: invalid parameter")

	// ErrBufferTooSmall is returned when a caller buffer cannot hold a
	// fixed-size structure.
	ErrBufferTooSmall = errors.New("vfs: buffer too small")

	// ErrUnsupportedFeature is returned for recognized but unsupported
	// on-disk features.
	ErrUnsupportedFeature = errors.New("vfs: unsupported feature")

	// ErrNotImplemented is returned for mutations on read-only backends and
	// for optional operations a store does not provide.
	ErrNotImplemented = errors.New("vfs: not implemented")

	// ErrNotInitialized is returned by the package-level accessors before
	// Init has run.
	ErrNotInitialized = errors.New("vfs: not initialized")

	// ErrInvalidHandle is returned for an unknown file descriptor.
	ErrInvalidHandle = errors.New("vfs: invalid handle")

	// ErrInvalidOperation is returned when an operation conflicts with the
	// open flags or targets the root.
	ErrInvalidOperation = errors.New("vfs: invalid operation")

	// ErrClosedHandle is returned for I/O on a closed handle.
	ErrClosedHandle = errors.New("vfs: handle is closed")
)
