package block

import (
	"bytes"
	"errors"
	"testing"

	"bearos/pkg/device"
)

func TestNewRAMDiskGeometry(t *testing.T) {
	if _, err := NewRAMDisk(0, 512); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("NewRAMDisk(0, 512) error = %v, want ErrInvalidGeometry", err)
	}
	if _, err := NewRAMDisk(16, 0); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("NewRAMDisk(16, 0) error = %v, want ErrInvalidGeometry", err)
	}

	disk, err := NewRAMDisk(16, 512)
	if err != nil {
		t.Fatalf("NewRAMDisk() error = %v", err)
	}
	if disk.BlockSize() != 512 {
		t.Errorf("BlockSize() = %d, want 512", disk.BlockSize())
	}
	if disk.BlockCount() != 16 {
		t.Errorf("BlockCount() = %d, want 16", disk.BlockCount())
	}
	if TotalSize(disk) != 16*512 {
		t.Errorf("TotalSize() = %d, want %d", TotalSize(disk), 16*512)
	}
}

func TestRAMDiskReadWrite(t *testing.T) {
	disk, err := NewRAMDisk(8, 256)
	if err != nil {
		t.Fatalf("NewRAMDisk() error = %v", err)
	}

	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	if err := disk.WriteBlock(3, data); err != nil {
		t.Fatalf("WriteBlock() error = %v", err)
	}

	got := make([]byte, 256)
	if err := disk.ReadBlock(3, got); err != nil {
		t.Fatalf("ReadBlock() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("ReadBlock() returned different data than written")
	}

	// Untouched blocks read back as zeros.
	if err := disk.ReadBlock(4, got); err != nil {
		t.Fatalf("ReadBlock() error = %v", err)
	}
	if !bytes.Equal(got, make([]byte, 256)) {
		t.Error("unwritten block is not zeroed")
	}
}

func TestRAMDiskBounds(t *testing.T) {
	disk, err := NewRAMDisk(8, 256)
	if err != nil {
		t.Fatalf("NewRAMDisk() error = %v", err)
	}

	buf := make([]byte, 256)
	if err := disk.ReadBlock(8, buf); !errors.Is(err, ErrInvalidBlock) {
		t.Errorf("ReadBlock(8) error = %v, want ErrInvalidBlock", err)
	}
	if err := disk.WriteBlock(100, buf); !errors.Is(err, ErrInvalidBlock) {
		t.Errorf("WriteBlock(100) error = %v, want ErrInvalidBlock", err)
	}

	short := make([]byte, 255)
	if err := disk.ReadBlock(0, short); !errors.Is(err, ErrInvalidBlockSize) {
		t.Errorf("ReadBlock() with short buffer error = %v, want ErrInvalidBlockSize", err)
	}
}

func TestNewRAMDiskFromBytes(t *testing.T) {
	image := make([]byte, 4*512)
	image[512] = 0xAB

	disk, err := NewRAMDiskFromBytes(image, 512)
	if err != nil {
		t.Fatalf("NewRAMDiskFromBytes() error = %v", err)
	}
	if disk.BlockCount() != 4 {
		t.Errorf("BlockCount() = %d, want 4", disk.BlockCount())
	}

	buf := make([]byte, 512)
	if err := disk.ReadBlock(1, buf); err != nil {
		t.Fatalf("ReadBlock() error = %v", err)
	}
	if buf[0] != 0xAB {
		t.Errorf("block 1 byte 0 = %#x, want 0xAB", buf[0])
	}

	if _, err := NewRAMDiskFromBytes(make([]byte, 100), 512); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("NewRAMDiskFromBytes() with misaligned image error = %v, want ErrInvalidGeometry", err)
	}
}

func TestDeviceAdapterSectored(t *testing.T) {
	img := device.NewImageFromBytes("disk0", make([]byte, 4*512))
	adapter := NewDeviceAdapter(img)

	if adapter.BlockSize() != 512 {
		t.Errorf("BlockSize() = %d, want 512", adapter.BlockSize())
	}
	if adapter.BlockCount() != 4 {
		t.Errorf("BlockCount() = %d, want 4", adapter.BlockCount())
	}
	if adapter.DeviceName() != "disk0" {
		t.Errorf("DeviceName() = %q, want %q", adapter.DeviceName(), "disk0")
	}

	data := make([]byte, 512)
	data[0] = 0x42
	if err := adapter.WriteBlock(2, data); err != nil {
		t.Fatalf("WriteBlock() error = %v", err)
	}

	got := make([]byte, 512)
	if err := adapter.ReadBlock(2, got); err != nil {
		t.Fatalf("ReadBlock() error = %v", err)
	}
	if got[0] != 0x42 {
		t.Errorf("block 2 byte 0 = %#x, want 0x42", got[0])
	}
}

// plainDevice implements device.Device without the Sectored capability.
type plainDevice struct{ name string }

func (d *plainDevice) Name() string      { return d.name }
func (d *plainDevice) Type() device.Type { return device.Character }

func TestDeviceAdapterNotSectored(t *testing.T) {
	adapter := NewDeviceAdapter(&plainDevice{name: "tty0"})

	if adapter.BlockSize() != 512 {
		t.Errorf("BlockSize() = %d, want default 512", adapter.BlockSize())
	}
	if adapter.BlockCount() != 0 {
		t.Errorf("BlockCount() = %d, want 0", adapter.BlockCount())
	}

	buf := make([]byte, 512)
	if err := adapter.ReadBlock(0, buf); !errors.Is(err, ErrInvalidBlock) {
		t.Errorf("ReadBlock() on non-sectored device error = %v, want ErrInvalidBlock", err)
	}
	if err := adapter.WriteBlock(0, buf); !errors.Is(err, ErrInvalidBlock) {
		t.Errorf("WriteBlock() on non-sectored device error = %v, want ErrInvalidBlock", err)
	}
}

func TestCacheReadWrite(t *testing.T) {
	disk, err := NewRAMDisk(16, 128)
	if err != nil {
		t.Fatalf("NewRAMDisk() error = %v", err)
	}
	cache := NewCache(disk, 4)

	data := make([]byte, 128)
	data[5] = 0x99
	if err := cache.WriteBlock(7, data); err != nil {
		t.Fatalf("WriteBlock() error = %v", err)
	}

	// Write-through: the backing device must already have the data.
	direct := make([]byte, 128)
	if err := disk.ReadBlock(7, direct); err != nil {
		t.Fatalf("ReadBlock() error = %v", err)
	}
	if direct[5] != 0x99 {
		t.Error("write did not reach the backing device")
	}

	got := make([]byte, 128)
	if err := cache.ReadBlock(7, got); err != nil {
		t.Fatalf("ReadBlock() error = %v", err)
	}
	if got[5] != 0x99 {
		t.Error("cached read returned wrong data")
	}

	stats := cache.Stats()
	if stats.HitCount != 1 {
		t.Errorf("Stats().HitCount = %d, want 1", stats.HitCount)
	}
}

func TestCacheEviction(t *testing.T) {
	disk, err := NewRAMDisk(16, 64)
	if err != nil {
		t.Fatalf("NewRAMDisk() error = %v", err)
	}
	cache := NewCache(disk, 2)

	buf := make([]byte, 64)
	for id := uint64(0); id < 4; id++ {
		if err := cache.ReadBlock(id, buf); err != nil {
			t.Fatalf("ReadBlock(%d) error = %v", id, err)
		}
	}

	stats := cache.Stats()
	if stats.Entries != 2 {
		t.Errorf("Stats().Entries = %d, want 2", stats.Entries)
	}
	if stats.MissCount != 4 {
		t.Errorf("Stats().MissCount = %d, want 4", stats.MissCount)
	}

	// Blocks 2 and 3 are resident; block 0 was evicted.
	if err := cache.ReadBlock(3, buf); err != nil {
		t.Fatalf("ReadBlock(3) error = %v", err)
	}
	if got := cache.Stats().HitCount; got != 1 {
		t.Errorf("Stats().HitCount = %d, want 1", got)
	}
	if err := cache.ReadBlock(0, buf); err != nil {
		t.Fatalf("ReadBlock(0) error = %v", err)
	}
	if got := cache.Stats().MissCount; got != 5 {
		t.Errorf("Stats().MissCount = %d, want 5", got)
	}
}

func TestCacheInvalidate(t *testing.T) {
	disk, err := NewRAMDisk(4, 64)
	if err != nil {
		t.Fatalf("NewRAMDisk() error = %v", err)
	}
	cache := NewCache(disk, 4)

	buf := make([]byte, 64)
	if err := cache.ReadBlock(1, buf); err != nil {
		t.Fatalf("ReadBlock() error = %v", err)
	}
	cache.Invalidate(1)

	if err := cache.ReadBlock(1, buf); err != nil {
		t.Fatalf("ReadBlock() error = %v", err)
	}
	if got := cache.Stats().MissCount; got != 2 {
		t.Errorf("Stats().MissCount = %d, want 2", got)
	}
}
