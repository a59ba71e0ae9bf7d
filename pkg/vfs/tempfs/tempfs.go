// Package tempfs provides the in-memory backing store of the BearOS
// storage stack. It is self-contained: no block device, all state lives in
// an arena of nodes indexed by inode number, with directories mapping child
// names to inodes. The root directory is inode 1 and exists for the life of
// the filesystem.
package tempfs

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"bearos/pkg/vfs"
)

const (
	rootInode = 1

	// Reported capacity. tempfs grows with the heap; this is the figure
	// surfaced to space queries.
	capacityBytes = 10 * 1024 * 1024
)

type node struct {
	inode uint64
	meta  vfs.Metadata
	data  []byte            // file payload, nil for directories
	child map[string]uint64 // directory entries, nil for files
}

func (n *node) isDir() bool { return n.child != nil }

// FS is an in-memory filesystem. All methods serialize on one mutex; the
// lock is held for the duration of a single call only.
type FS struct {
	mu        sync.Mutex
	name      string
	nodes     map[uint64]*node
	nextInode uint64
	now       func() time.Time
}

// New creates a tempfs containing only the root directory.
func New(name string) *FS {
	fs := &FS{
		name:      name,
		nodes:     make(map[uint64]*node),
		nextInode: rootInode + 1,
		now:       time.Now,
	}
	fs.nodes[rootInode] = &node{
		inode: rootInode,
		meta:  vfs.NewDirectoryMetadata(fs.now()),
		child: make(map[string]uint64),
	}
	return fs
}

// SetClock replaces the timestamp source. Tests use a fixed clock.
func (fs *FS) SetClock(now func() time.Time) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.now = now
}

// lookup walks the canonical path component by component from the root.
func (fs *FS) lookup(path string) (*node, error) {
	n := fs.nodes[rootInode]
	for _, part := range vfs.SplitPath(path) {
		if !n.isDir() {
			return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotADirectory)
		}
		ino, ok := n.child[part]
		if !ok {
			return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
		}
		n = fs.nodes[ino]
	}
	return n, nil
}

// lookupParent resolves the parent directory of the canonical path and
// returns it with the final component's name.
func (fs *FS) lookupParent(path string) (*node, string, error) {
	parent, err := fs.lookup(vfs.ParentPath(path))
	if err != nil {
		return nil, "", err
	}
	if !parent.isDir() {
		return nil, "", fmt.Errorf("%q: %w", vfs.ParentPath(path), vfs.ErrNotADirectory)
	}
	return parent, vfs.BaseName(path), nil
}

// Mount implements vfs.FileSystem.
func (fs *FS) Mount() error { return nil }

// Unmount implements vfs.FileSystem.
func (fs *FS) Unmount() error { return nil }

// CreateFile creates an empty file. The immediate parent directory must
// already exist.
func (fs *FS) CreateFile(path string) error {
	if err := vfs.ValidatePath(path); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	canonical := vfs.Canonical(path)
	if _, err := fs.lookup(canonical); err == nil {
		return fmt.Errorf("%q: %w", canonical, vfs.ErrAlreadyExists)
	}

	parent, name, err := fs.lookupParent(canonical)
	if err != nil {
		return err
	}

	n := &node{
		inode: fs.nextInode,
		meta:  vfs.NewFileMetadata(fs.now()),
	}
	fs.nextInode++
	fs.nodes[n.inode] = n
	parent.child[name] = n.inode
	parent.meta.ModifiedAt = fs.now()
	return nil
}

// CreateDirectory creates the directory at path, materializing every
// missing ancestor. An existing directory at the path is not an error.
func (fs *FS) CreateDirectory(path string) error {
	if err := vfs.ValidatePath(path); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	n := fs.nodes[rootInode]
	walked := "/"
	for _, part := range vfs.SplitPath(path) {
		if !n.isDir() {
			return fmt.Errorf("%q: %w", walked, vfs.ErrNotADirectory)
		}
		walked = vfs.JoinPath(walked, part)
		if ino, ok := n.child[part]; ok {
			n = fs.nodes[ino]
			continue
		}
		dir := &node{
			inode: fs.nextInode,
			meta:  vfs.NewDirectoryMetadata(fs.now()),
			child: make(map[string]uint64),
		}
		fs.nextInode++
		fs.nodes[dir.inode] = dir
		n.child[part] = dir.inode
		n.meta.ModifiedAt = fs.now()
		n = dir
	}
	if !n.isDir() {
		return fmt.Errorf("%q: %w", walked, vfs.ErrNotADirectory)
	}
	return nil
}

// Remove deletes a file or empty directory. The root cannot be removed.
func (fs *FS) Remove(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	canonical := vfs.Canonical(path)
	if canonical == "/" {
		return fmt.Errorf("remove root: %w", vfs.ErrInvalidOperation)
	}

	n, err := fs.lookup(canonical)
	if err != nil {
		return err
	}
	if n.isDir() && len(n.child) > 0 {
		return fmt.Errorf("%q: %w", canonical, vfs.ErrDirectoryNotEmpty)
	}

	parent, name, err := fs.lookupParent(canonical)
	if err != nil {
		return err
	}
	delete(parent.child, name)
	parent.meta.ModifiedAt = fs.now()
	delete(fs.nodes, n.inode)
	return nil
}

// Open returns a handle for an existing file.
func (fs *FS) Open(path string, flags vfs.OpenFlag) (*vfs.FileHandle, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	canonical := vfs.Canonical(path)
	n, err := fs.lookup(canonical)
	if err != nil {
		return nil, err
	}
	if n.isDir() {
		return nil, fmt.Errorf("%q: %w", canonical, vfs.ErrIsADirectory)
	}
	if flags&vfs.FlagTruncate != 0 && flags&vfs.FlagWrite != 0 {
		n.data = nil
		n.meta.Size = 0
		n.meta.ModifiedAt = fs.now()
	}
	return vfs.NewFileHandle(canonical, fs, flags), nil
}

// Metadata returns a copy of the node's metadata.
func (fs *FS) Metadata(path string) (vfs.Metadata, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.lookup(vfs.Canonical(path))
	if err != nil {
		return vfs.Metadata{}, err
	}
	return n.meta, nil
}

// ReadDir lists the directory sorted by name.
func (fs *FS) ReadDir(path string) ([]vfs.DirEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.lookup(vfs.Canonical(path))
	if err != nil {
		return nil, err
	}
	if !n.isDir() {
		return nil, fmt.Errorf("%q: %w", vfs.Canonical(path), vfs.ErrNotADirectory)
	}

	entries := make([]vfs.DirEntry, 0, len(n.child))
	for name, ino := range n.child {
		child := fs.nodes[ino]
		entries = append(entries, vfs.DirEntry{
			Name:  name,
			Type:  child.meta.Type,
			Inode: ino,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Rename re-links the node from its old parent to the new one. Both paths
// must live on this store and the destination must not exist.
func (fs *FS) Rename(from, to string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	src := vfs.Canonical(from)
	dst := vfs.Canonical(to)
	if src == "/" || dst == "/" {
		return fmt.Errorf("rename root: %w", vfs.ErrInvalidOperation)
	}
	// Moving a directory into its own subtree would detach it from the
	// tree while keeping it alive in its own child map.
	if dst == src || strings.HasPrefix(dst, src+"/") {
		return fmt.Errorf("rename %q into itself: %w", src, vfs.ErrInvalidOperation)
	}

	n, err := fs.lookup(src)
	if err != nil {
		return err
	}
	if _, err := fs.lookup(dst); err == nil {
		return fmt.Errorf("%q: %w", dst, vfs.ErrAlreadyExists)
	}

	oldParent, oldName, err := fs.lookupParent(src)
	if err != nil {
		return err
	}
	newParent, newName, err := fs.lookupParent(dst)
	if err != nil {
		return err
	}

	delete(oldParent.child, oldName)
	newParent.child[newName] = n.inode
	now := fs.now()
	oldParent.meta.ModifiedAt = now
	newParent.meta.ModifiedAt = now
	return nil
}

// Name implements vfs.FileSystem.
func (fs *FS) Name() string { return fs.name }

// TotalSpace implements vfs.FileSystem.
func (fs *FS) TotalSpace() uint64 { return capacityBytes }

// AvailableSpace reports capacity minus the bytes held by files.
func (fs *FS) AvailableSpace() uint64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var used uint64
	for _, n := range fs.nodes {
		used += uint64(len(n.data))
	}
	if used >= capacityBytes {
		return 0
	}
	return capacityBytes - used
}

// ReadAt copies file bytes starting at offset. Reading at or past end of
// file reports zero bytes, never an error.
func (fs *FS) ReadAt(path string, offset uint64, buf []byte) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.lookup(vfs.Canonical(path))
	if err != nil {
		return 0, err
	}
	if n.isDir() {
		return 0, fmt.Errorf("%q: %w", vfs.Canonical(path), vfs.ErrNotAFile)
	}
	n.meta.AccessedAt = fs.now()

	if offset >= uint64(len(n.data)) {
		return 0, nil
	}
	return copy(buf, n.data[offset:]), nil
}

// WriteAt writes buf at offset, zero-filling the gap when offset is past
// the current size.
func (fs *FS) WriteAt(path string, offset uint64, buf []byte) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.lookup(vfs.Canonical(path))
	if err != nil {
		return 0, err
	}
	if n.isDir() {
		return 0, fmt.Errorf("%q: %w", vfs.Canonical(path), vfs.ErrNotAFile)
	}

	end := offset + uint64(len(buf))
	if end > uint64(len(n.data)) {
		grown := make([]byte, end)
		copy(grown, n.data)
		n.data = grown
	}
	copy(n.data[offset:end], buf)
	n.meta.Size = uint64(len(n.data))
	n.meta.ModifiedAt = fs.now()
	return len(buf), nil
}
