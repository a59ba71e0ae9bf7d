package vfs

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Descriptor numbers start after the conventional stdin/stdout/stderr
// range and are never reused for the lifetime of the table.
const firstFd = 3

// FileDescriptor pairs a numeric descriptor with the handle it owns.
type FileDescriptor struct {
	Fd     uint32
	Handle *FileHandle
}

// FdTable is the process-wide table of open files layered on a Manager.
type FdTable struct {
	mu          sync.Mutex
	manager     *Manager
	nextFd      atomic.Uint32
	descriptors []FileDescriptor
}

// NewFdTable returns an empty table dispatching through mgr.
func NewFdTable(mgr *Manager) *FdTable {
	t := &FdTable{manager: mgr}
	t.nextFd.Store(firstFd)
	return t
}

// Open opens the path through the VFS and registers a new descriptor.
func (t *FdTable) Open(path string, flags OpenFlag) (uint32, error) {
	handle, err := t.manager.Open(path, flags)
	if err != nil {
		return 0, err
	}

	fd := t.nextFd.Add(1) - 1

	t.mu.Lock()
	t.descriptors = append(t.descriptors, FileDescriptor{Fd: fd, Handle: handle})
	t.mu.Unlock()
	return fd, nil
}

// Close removes the descriptor and closes its handle.
func (t *FdTable) Close(fd uint32) error {
	t.mu.Lock()
	idx := -1
	for i, d := range t.descriptors {
		if d.Fd == fd {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return fmt.Errorf("close fd %d: %w", fd, ErrInvalidHandle)
	}
	d := t.descriptors[idx]
	t.descriptors = append(t.descriptors[:idx], t.descriptors[idx+1:]...)
	t.mu.Unlock()

	return d.Handle.Close()
}

// Read reads from the descriptor's current position.
func (t *FdTable) Read(fd uint32, buf []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, err := t.lookup(fd)
	if err != nil {
		return 0, err
	}
	return d.Handle.Read(buf)
}

// Write writes at the descriptor's current position.
func (t *FdTable) Write(fd uint32, buf []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, err := t.lookup(fd)
	if err != nil {
		return 0, err
	}
	return d.Handle.Write(buf)
}

// Seek moves the descriptor's cursor to an absolute offset.
func (t *FdTable) Seek(fd uint32, position uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, err := t.lookup(fd)
	if err != nil {
		return err
	}
	return d.Handle.Seek(position)
}

// Tell reports the descriptor's cursor position.
func (t *FdTable) Tell(fd uint32) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, err := t.lookup(fd)
	if err != nil {
		return 0, err
	}
	return d.Handle.Tell(), nil
}

// Len reports the number of open descriptors.
func (t *FdTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.descriptors)
}

func (t *FdTable) lookup(fd uint32) (*FileDescriptor, error) {
	for i := range t.descriptors {
		if t.descriptors[i].Fd == fd {
			return &t.descriptors[i], nil
		}
	}
	return nil, fmt.Errorf("fd %d: %w", fd, ErrInvalidHandle)
}

// The process-wide descriptor table, created once at boot by InitFdTable.
var (
	fdMu           sync.Mutex
	defaultFdTable *FdTable
)

// InitFdTable installs the process-wide table on top of mgr.
func InitFdTable(mgr *Manager) *FdTable {
	fdMu.Lock()
	defer fdMu.Unlock()
	defaultFdTable = NewFdTable(mgr)
	return defaultFdTable
}

// Fds returns the process-wide table, or ErrNotInitialized before
// InitFdTable has run.
func Fds() (*FdTable, error) {
	fdMu.Lock()
	defer fdMu.Unlock()
	if defaultFdTable == nil {
		return nil, ErrNotInitialized
	}
	return defaultFdTable, nil
}
