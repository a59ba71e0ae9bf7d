package block

import "sync"

// RAMDisk is a block device backed by a single contiguous memory buffer.
// It is used both for boot-time scratch storage and as a test double for
// the filesystem drivers.
type RAMDisk struct {
	data       []byte
	blockSize  int
	blockCount uint64
	mu         sync.RWMutex
}

// NewRAMDisk creates a memory-backed block device with the given
// geometry. blockCount and blockSize must both be non-zero.
func NewRAMDisk(blockCount uint64, blockSize int) (*RAMDisk, error) {
	if blockCount == 0 || blockSize <= 0 {
		return nil, ErrInvalidGeometry
	}
	return &RAMDisk{
		data:       make([]byte, blockCount*uint64(blockSize)),
		blockSize:  blockSize,
		blockCount: blockCount,
	}, nil
}

// NewRAMDiskFromBytes creates a RAM disk over an existing image. The
// image length must be a non-zero multiple of blockSize. The disk takes
// ownership of the slice.
func NewRAMDiskFromBytes(image []byte, blockSize int) (*RAMDisk, error) {
	if blockSize <= 0 || len(image) == 0 || len(image)%blockSize != 0 {
		return nil, ErrInvalidGeometry
	}
	return &RAMDisk{
		data:       image,
		blockSize:  blockSize,
		blockCount: uint64(len(image) / blockSize),
	}, nil
}

// BlockSize returns the configured block size.
func (d *RAMDisk) BlockSize() int {
	return d.blockSize
}

// BlockCount returns the total number of blocks.
func (d *RAMDisk) BlockCount() uint64 {
	return d.blockCount
}

// ReadBlock copies block id into buf.
func (d *RAMDisk) ReadBlock(id uint64, buf []byte) error {
	if err := checkAccess(id, buf, d.blockSize, d.blockCount); err != nil {
		return err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	off := id * uint64(d.blockSize)
	copy(buf, d.data[off:off+uint64(d.blockSize)])
	return nil
}

// WriteBlock copies buf into block id.
func (d *RAMDisk) WriteBlock(id uint64, buf []byte) error {
	if err := checkAccess(id, buf, d.blockSize, d.blockCount); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	off := id * uint64(d.blockSize)
	copy(d.data[off:off+uint64(d.blockSize)], buf)
	return nil
}

// Flush is a no-op for memory devices.
func (d *RAMDisk) Flush() error {
	return nil
}
