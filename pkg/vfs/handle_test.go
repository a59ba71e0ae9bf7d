package vfs

import (
	"bytes"
	"errors"
	"testing"
)

func TestHandleReadWriteFallback(t *testing.T) {
	fs := newFakeFS("stubfs")
	handle := NewFileHandle("/f", fs, FlagRead|FlagWrite)

	// The store has no random access, so Read degrades to the stub.
	buf := make([]byte, 16)
	n, err := handle.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if n != 2 || !bytes.Equal(buf[:n], []byte("Hi")) {
		t.Errorf("Read() = %d %q, want the 2-byte stub", n, buf[:n])
	}
	if handle.Tell() != 2 {
		t.Errorf("Tell() after stub read = %d, want 2", handle.Tell())
	}

	// Writes are accepted as no-ops reporting full length.
	n, err = handle.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 5 {
		t.Errorf("Write() = %d, want 5", n)
	}
	if handle.Tell() != 7 {
		t.Errorf("Tell() after write = %d, want 7", handle.Tell())
	}
}

func TestHandleRandomAccess(t *testing.T) {
	fs := newFakeFS("rawfs")
	fs.rawAccess = true
	fs.data["/f"] = []byte("hello, world")

	handle := NewFileHandle("/f", fs, FlagRead)
	buf := make([]byte, 5)
	n, err := handle.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if n != 5 || string(buf) != "hello" {
		t.Errorf("Read() = %d %q, want 5 \"hello\"", n, buf)
	}

	if err := handle.Seek(7); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	n, err = handle.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(buf[:n]) != "world" {
		t.Errorf("Read() after Seek(7) = %q, want \"world\"", buf[:n])
	}
}

func TestHandleFlagEnforcement(t *testing.T) {
	fs := newFakeFS("stubfs")

	readOnly := NewFileHandle("/f", fs, FlagRead)
	if _, err := readOnly.Write([]byte("x")); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Write() on read-only handle error = %v, want ErrInvalidOperation", err)
	}

	writeOnly := NewFileHandle("/f", fs, FlagWrite)
	if _, err := writeOnly.Read(make([]byte, 4)); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Read() on write-only handle error = %v, want ErrInvalidOperation", err)
	}
}

func TestHandleClose(t *testing.T) {
	fs := newFakeFS("stubfs")
	handle := NewFileHandle("/f", fs, FlagRead)

	if err := handle.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := handle.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
	if _, err := handle.Read(make([]byte, 4)); !errors.Is(err, ErrClosedHandle) {
		t.Errorf("Read() after Close() error = %v, want ErrClosedHandle", err)
	}
	if err := handle.Seek(0); !errors.Is(err, ErrClosedHandle) {
		t.Errorf("Seek() after Close() error = %v, want ErrClosedHandle", err)
	}
}
