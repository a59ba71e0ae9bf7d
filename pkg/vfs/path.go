package vfs

import (
	"errors"
	"strings"
)

// Path-related errors.
var (
	ErrEmptyPath   = errors.New("vfs: empty path")
	ErrInvalidPath = errors.New("vfs: invalid path")
	ErrPathTooLong = errors.New("vfs: path too long")
)

// MaxPathLength is the maximum accepted path length.
const MaxPathLength = 4096

// Canonical normalizes a path: ensures a leading slash, collapses repeated
// slashes and strips the trailing slash (except for the root). It does not
// resolve "." or ".." components; shells do that before calling in.
// Canonical is idempotent.
func Canonical(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	for len(p) > 1 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}

// SplitPath returns the canonical path's components. The root has none.
func SplitPath(p string) []string {
	p = Canonical(p)
	if p == "/" {
		return nil
	}
	return strings.Split(p[1:], "/")
}

// ParentPath returns the canonical path of the node's parent directory.
func ParentPath(p string) string {
	p = Canonical(p)
	i := strings.LastIndexByte(p, '/')
	if i <= 0 {
		return "/"
	}
	return p[:i]
}

// BaseName returns the last component of the canonical path, or "" for the
// root.
func BaseName(p string) string {
	p = Canonical(p)
	if p == "/" {
		return ""
	}
	return p[strings.LastIndexByte(p, '/')+1:]
}

// JoinPath joins a directory and a child name into a canonical path.
func JoinPath(dir, name string) string {
	return Canonical(dir + "/" + name)
}

// ValidatePath rejects paths the VFS cannot represent.
func ValidatePath(p string) error {
	if p == "" {
		return ErrEmptyPath
	}
	if len(p) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.ContainsRune(p, 0) {
		return ErrInvalidPath
	}
	return nil
}
