/*
Package block provides the block device abstraction used by the
filesystem drivers.

A BlockDevice exposes fixed-size, randomly addressable blocks. The
package ships three implementations: RAMDisk (memory-backed),
DeviceAdapter (bridges a registered hardware device into the block
layer), and Cache (a write-through LRU cache wrapping any other
BlockDevice).

Example Usage:

	// Create a memory-backed device with 1024 blocks of 512 bytes.
	disk, err := block.NewRAMDisk(1024, 512)
	if err != nil {
		log.Fatal(err)
	}

	// Wrap it with a 64-block LRU cache.
	cached := block.NewCache(disk, 64)

	buf := make([]byte, cached.BlockSize())
	if err := cached.ReadBlock(0, buf); err != nil {
		log.Fatal(err)
	}
*/
package block

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrInvalidBlock     = errors.New("block: invalid block number")
	ErrInvalidBlockSize = errors.New("block: buffer length does not match block size")
	ErrInvalidGeometry  = errors.New("block: invalid device geometry")
	ErrReadOnly         = errors.New("block: device is read-only")
	ErrDeviceClosed     = errors.New("block: device is closed")
)

// BlockDevice is the interface implemented by all block storage backends.
// Buffers passed to ReadBlock and WriteBlock must have length exactly
// BlockSize().
type BlockDevice interface {
	// BlockSize returns the size of each block in bytes.
	BlockSize() int

	// BlockCount returns the total number of blocks on the device.
	BlockCount() uint64

	// ReadBlock reads block id into buf.
	ReadBlock(id uint64, buf []byte) error

	// WriteBlock writes buf to block id.
	WriteBlock(id uint64, buf []byte) error

	// Flush ensures all pending writes are persisted.
	Flush() error
}

// checkAccess validates a block id and buffer against a device geometry.
func checkAccess(id uint64, buf []byte, blockSize int, blockCount uint64) error {
	if id >= blockCount {
		return fmt.Errorf("%w: %d >= %d", ErrInvalidBlock, id, blockCount)
	}
	if len(buf) != blockSize {
		return fmt.Errorf("%w: %d != %d", ErrInvalidBlockSize, len(buf), blockSize)
	}
	return nil
}

// TotalSize returns the device capacity in bytes.
func TotalSize(d BlockDevice) uint64 {
	return uint64(d.BlockSize()) * d.BlockCount()
}
