package device

import (
	"fmt"
	"io"
	"os"
)

// Sector size used by disk images, matching the media they model.
const imageSectorSize = 512

// Reads are retried a fixed number of times before reporting a timeout,
// mirroring the polling discipline of the hardware drivers this device
// stands in for.
const readRetries = 3

// ImageDevice exposes a disk-image file as a sector-addressed block
// device. On a host OS it plays the role an ATA disk plays inside the
// kernel.
type ImageDevice struct {
	name string
	r    io.ReaderAt
	w    io.WriterAt // nil for read-only images
	size int64
}

// OpenImage opens a disk-image file read-only.
func OpenImage(path string) (*ImageDevice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, ErrDeviceNotFound)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat image %q: %w", path, ErrDeviceError)
	}
	return &ImageDevice{name: path, r: f, size: st.Size()}, nil
}

// NewImageFromBytes wraps an in-memory disk image. Tests and the RAM-disk
// fallback path use it.
func NewImageFromBytes(name string, data []byte) *ImageDevice {
	buf := byteImage(data)
	return &ImageDevice{name: name, r: buf, w: buf, size: int64(len(data))}
}

// Name implements Device.
func (d *ImageDevice) Name() string { return d.name }

// Type implements Device.
func (d *ImageDevice) Type() Type { return Block }

// BlockSize implements Sectored.
func (d *ImageDevice) BlockSize() int { return imageSectorSize }

// BlockCount implements Sectored.
func (d *ImageDevice) BlockCount() uint64 {
	return uint64(d.size) / imageSectorSize
}

// ReadSector implements Sectored.
func (d *ImageDevice) ReadSector(id uint64, buf []byte) error {
	if len(buf) != imageSectorSize {
		return fmt.Errorf("sector buffer length %d: %w", len(buf), ErrDeviceError)
	}
	if id >= d.BlockCount() {
		return fmt.Errorf("sector %d out of range: %w", id, ErrDeviceError)
	}

	var err error
	for attempt := 0; attempt < readRetries; attempt++ {
		if _, err = d.r.ReadAt(buf, int64(id)*imageSectorSize); err == nil {
			return nil
		}
	}
	return fmt.Errorf("read sector %d: %v: %w", id, err, ErrDeviceTimeout)
}

// WriteSector implements Sectored.
func (d *ImageDevice) WriteSector(id uint64, buf []byte) error {
	if d.w == nil {
		return fmt.Errorf("image %q is read-only: %w", d.name, ErrDeviceError)
	}
	if len(buf) != imageSectorSize {
		return fmt.Errorf("sector buffer length %d: %w", len(buf), ErrDeviceError)
	}
	if id >= d.BlockCount() {
		return fmt.Errorf("sector %d out of range: %w", id, ErrDeviceError)
	}
	if _, err := d.w.WriteAt(buf, int64(id)*imageSectorSize); err != nil {
		return fmt.Errorf("write sector %d: %v: %w", id, err, ErrDeviceError)
	}
	return nil
}

// Close releases the underlying file, if any.
func (d *ImageDevice) Close() error {
	if c, ok := d.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// byteImage adapts a byte slice to io.ReaderAt/io.WriterAt.
type byteImage []byte

func (b byteImage) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b byteImage) WriteAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > int64(len(b)) {
		return 0, io.ErrShortWrite
	}
	return copy(b[off:], p), nil
}
