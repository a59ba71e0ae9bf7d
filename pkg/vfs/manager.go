package vfs

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MountPoint associates a path prefix with a backing store.
type MountPoint struct {
	ID   uuid.UUID
	Path string
	FS   FileSystem
}

// Manager owns the mount table and dispatches every filesystem operation to
// the store whose mount path is the longest prefix of the target.
//
// The mount table has its own lock; each backing store serializes its own
// operations. Two different stores can therefore be driven concurrently,
// while mount and unmount never race a lookup mid-dispatch.
type Manager struct {
	mu     sync.Mutex
	mounts []MountPoint
}

// NewManager returns an empty manager. The kernel constructs one at boot
// and threads it through every subsystem that touches the filesystem.
func NewManager() *Manager {
	return &Manager{}
}

// Mount calls the store's Mount hook and appends the mount point. Overlap
// with existing mounts is not validated: resolution picks the longest
// prefix, so mounting "/" after "/data" does not hide "/data".
func (m *Manager) Mount(path string, fs FileSystem) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if err := fs.Mount(); err != nil {
		return fmt.Errorf("mount %q: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.mounts = append(m.mounts, MountPoint{
		ID:   uuid.New(),
		Path: path,
		FS:   fs,
	})
	return nil
}

// Unmount removes the mount point at exactly path and calls the store's
// Unmount hook.
func (m *Manager) Unmount(path string) error {
	m.mu.Lock()
	idx := -1
	for i, mp := range m.mounts {
		if mp.Path == path {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("unmount %q: %w", path, ErrNotFound)
	}
	mp := m.mounts[idx]
	m.mounts = append(m.mounts[:idx], m.mounts[idx+1:]...)
	m.mu.Unlock()

	return mp.FS.Unmount()
}

// MountPoints returns a snapshot of the mount table.
func (m *Manager) MountPoints() []MountPoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MountPoint, len(m.mounts))
	copy(out, m.mounts)
	return out
}

// FindFS resolves a path to its backing store by longest-prefix match over
// the mount paths. Matching is a literal string prefix, not component
// aware: a mount at "/data" also prefixes "/datax". The operation
// wrappers canonicalize before resolving; direct callers should pass a
// canonical path.
func (m *Manager) FindFS(path string) (FileSystem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		best   string
		bestFS FileSystem
	)
	for _, mp := range m.mounts {
		if strings.HasPrefix(path, mp.Path) && len(mp.Path) > len(best) {
			best = mp.Path
			bestFS = mp.FS
		}
	}
	if bestFS == nil {
		return nil, fmt.Errorf("no filesystem for %q: %w", path, ErrNotFound)
	}
	return bestFS, nil
}

// Open resolves the path and opens the file on its store.
func (m *Manager) Open(path string, flags OpenFlag) (*FileHandle, error) {
	path = Canonical(path)
	fs, err := m.FindFS(path)
	if err != nil {
		return nil, err
	}
	return fs.Open(path, flags)
}

// CreateFile resolves the path and creates an empty file.
func (m *Manager) CreateFile(path string) error {
	path = Canonical(path)
	fs, err := m.FindFS(path)
	if err != nil {
		return err
	}
	return fs.CreateFile(path)
}

// CreateDirectory resolves the path and creates the directory and any
// missing ancestors.
func (m *Manager) CreateDirectory(path string) error {
	path = Canonical(path)
	fs, err := m.FindFS(path)
	if err != nil {
		return err
	}
	return fs.CreateDirectory(path)
}

// Remove resolves the path and removes the file or empty directory.
func (m *Manager) Remove(path string) error {
	path = Canonical(path)
	fs, err := m.FindFS(path)
	if err != nil {
		return err
	}
	return fs.Remove(path)
}

// Metadata resolves the path and returns the node's metadata.
func (m *Manager) Metadata(path string) (Metadata, error) {
	path = Canonical(path)
	fs, err := m.FindFS(path)
	if err != nil {
		return Metadata{}, err
	}
	return fs.Metadata(path)
}

// ReadDir resolves the path and lists the directory.
func (m *Manager) ReadDir(path string) ([]DirEntry, error) {
	path = Canonical(path)
	fs, err := m.FindFS(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadDir(path)
}

// Rename moves a node. Source and destination must resolve to the same
// store instance; moving across stores is not supported.
func (m *Manager) Rename(from, to string) error {
	from = Canonical(from)
	to = Canonical(to)
	fromFS, err := m.FindFS(from)
	if err != nil {
		return err
	}
	toFS, err := m.FindFS(to)
	if err != nil {
		return err
	}
	if fromFS != toFS {
		return fmt.Errorf("rename across filesystems: %w", ErrNotImplemented)
	}
	return fromFS.Rename(from, to)
}

// The process-wide manager, created once at boot by Init.
var (
	defaultMu      sync.Mutex
	defaultManager *Manager
)

// Init installs the process-wide manager. Calling it twice replaces the
// previous instance.
func Init() *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultManager = NewManager()
	return defaultManager
}

// Default returns the process-wide manager, or ErrNotInitialized before
// Init has run.
func Default() (*Manager, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultManager == nil {
		return nil, ErrNotInitialized
	}
	return defaultManager, nil
}
