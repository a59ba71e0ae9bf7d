package vfs

import "time"

// NodeType identifies the kind of a filesystem node.
type NodeType uint8

const (
	File NodeType = iota
	Directory
	SymbolicLink
	BlockDeviceNode
	CharacterDeviceNode
	FIFO
	Socket
)

// String returns a short tag for directory listings.
func (t NodeType) String() string {
	switch t {
	case File:
		return "FILE"
	case Directory:
		return "DIR"
	case SymbolicLink:
		return "LINK"
	case BlockDeviceNode:
		return "BLK"
	case CharacterDeviceNode:
		return "CHR"
	case FIFO:
		return "FIFO"
	case Socket:
		return "SOCK"
	default:
		return "OTHER"
	}
}

// Perm is a permission bitmask: three rwx triplets for owner, group and
// others. Stores record it; nothing in this layer enforces it.
type Perm uint16

const (
	PermOtherExec  Perm = 1 << 0
	PermOtherWrite Perm = 1 << 1
	PermOtherRead  Perm = 1 << 2
	PermGroupExec  Perm = 1 << 3
	PermGroupWrite Perm = 1 << 4
	PermGroupRead  Perm = 1 << 5
	PermOwnerExec  Perm = 1 << 6
	PermOwnerWrite Perm = 1 << 7
	PermOwnerRead  Perm = 1 << 8

	PermOtherAll = PermOtherRead | PermOtherWrite | PermOtherExec
	PermGroupAll = PermGroupRead | PermGroupWrite | PermGroupExec
	PermOwnerAll = PermOwnerRead | PermOwnerWrite | PermOwnerExec
	PermAll      = PermOwnerAll | PermGroupAll | PermOtherAll
)

// OpenFlag is the file-open flag bitmask.
type OpenFlag uint8

const (
	FlagRead     OpenFlag = 1 << 0
	FlagWrite    OpenFlag = 1 << 1
	FlagAppend   OpenFlag = 1 << 2
	FlagCreate   OpenFlag = 1 << 3
	FlagTruncate OpenFlag = 1 << 4
)

// Metadata describes a filesystem node. It is a value type: stores copy it
// out on every query and never hand out live references.
type Metadata struct {
	Type        NodeType
	Size        uint64
	Permissions Perm
	CreatedAt   time.Time
	ModifiedAt  time.Time
	AccessedAt  time.Time
}

// NewFileMetadata returns default metadata for a regular file.
func NewFileMetadata(now time.Time) Metadata {
	return Metadata{
		Type:        File,
		Permissions: PermOwnerAll | PermGroupRead | PermOtherRead,
		CreatedAt:   now,
		ModifiedAt:  now,
		AccessedAt:  now,
	}
}

// NewDirectoryMetadata returns default metadata for a directory.
func NewDirectoryMetadata(now time.Time) Metadata {
	return Metadata{
		Type:        Directory,
		Permissions: PermOwnerAll | PermGroupAll | PermOtherRead | PermOtherExec,
		CreatedAt:   now,
		ModifiedAt:  now,
		AccessedAt:  now,
	}
}

// DirEntry is a directory-listing result. It is a snapshot, not a live
// reference into the backing store.
type DirEntry struct {
	Name  string
	Type  NodeType
	Inode uint64
}

// FileSystem is the capability every mounted backing store implements.
// Implementations own their data exclusively and serialize access
// internally; the Manager only holds a shared handle.
//
// ReadAt and WriteAt are optional: stores without random access return
// ErrNotImplemented and FileHandle degrades (see FileHandle.Read).
type FileSystem interface {
	// Mount prepares the store for use. Called once by Manager.Mount.
	Mount() error

	// Unmount releases the store. Called by Manager.Unmount.
	Unmount() error

	// CreateFile creates an empty file. The parent directory must exist.
	CreateFile(path string) error

	// CreateDirectory creates a directory, materializing missing ancestors.
	CreateDirectory(path string) error

	// Remove deletes a file or empty directory. The root cannot be removed.
	Remove(path string) error

	// Open returns a handle positioned at offset zero. The path must name
	// an existing file, not a directory.
	Open(path string, flags OpenFlag) (*FileHandle, error)

	// Metadata returns a copy of the node's metadata.
	Metadata(path string) (Metadata, error)

	// ReadDir lists a directory.
	ReadDir(path string) ([]DirEntry, error)

	// Rename moves a node within this store.
	Rename(from, to string) error

	// Name identifies the store ("tempfs", "FAT16", ...).
	Name() string

	// TotalSpace reports the store's capacity in bytes.
	TotalSpace() uint64

	// AvailableSpace reports the free capacity in bytes.
	AvailableSpace() uint64

	// ReadAt reads up to len(buf) bytes from the file at the byte offset.
	// Reading at or past end of file returns 0, nil.
	ReadAt(path string, offset uint64, buf []byte) (int, error)

	// WriteAt writes buf at the byte offset, zero-filling any gap between
	// the current size and the offset.
	WriteAt(path string, offset uint64, buf []byte) (int, error)
}
