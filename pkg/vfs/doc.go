// Package vfs provides the virtual filesystem layer of the BearOS storage
// stack: a path-based FileSystem capability implemented by pluggable backing
// stores, a mount-point Manager that multiplexes them, file handles, and a
// process-wide file descriptor table.
//
// Backing stores live in subpackages: tempfs (in-memory) and fatfs
// (read-only FAT12/16/32 over a block device).
//
// # Usage
//
//	mgr := vfs.NewManager()
//	if err := mgr.Mount("/", tempfs.New("root")); err != nil {
//		log.Fatal(err)
//	}
//	if err := mgr.CreateFile("/hello.txt"); err != nil {
//		log.Fatal(err)
//	}
//	h, err := mgr.Open("/hello.txt", vfs.FlagRead|vfs.FlagWrite)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer h.Close()
package vfs
