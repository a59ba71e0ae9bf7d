package block

import (
	"bearos/pkg/device"
)

const defaultBlockSize = 512

// DeviceAdapter presents a registered hardware device as a BlockDevice.
// Devices that implement device.Sectored are fully usable; anything else
// reports a default geometry of 512-byte blocks and zero capacity, so
// every access fails the bounds check rather than reaching the device.
type DeviceAdapter struct {
	dev      device.Device
	sectored device.Sectored // nil when the device has no sector access
}

// NewDeviceAdapter wraps dev for use by the block layer. The sector
// capability is probed once at construction.
func NewDeviceAdapter(dev device.Device) *DeviceAdapter {
	a := &DeviceAdapter{dev: dev}
	if s, ok := dev.(device.Sectored); ok {
		a.sectored = s
	}
	return a
}

// DeviceName returns the name of the wrapped device.
func (a *DeviceAdapter) DeviceName() string {
	return a.dev.Name()
}

// BlockSize returns the device sector size, or 512 when the device does
// not expose sector access.
func (a *DeviceAdapter) BlockSize() int {
	if a.sectored == nil {
		return defaultBlockSize
	}
	return a.sectored.BlockSize()
}

// BlockCount returns the device sector count, or zero when the device
// does not expose sector access.
func (a *DeviceAdapter) BlockCount() uint64 {
	if a.sectored == nil {
		return 0
	}
	return a.sectored.BlockCount()
}

// ReadBlock reads one sector from the device.
func (a *DeviceAdapter) ReadBlock(id uint64, buf []byte) error {
	if err := checkAccess(id, buf, a.BlockSize(), a.BlockCount()); err != nil {
		return err
	}
	return a.sectored.ReadSector(id, buf)
}

// WriteBlock writes one sector to the device.
func (a *DeviceAdapter) WriteBlock(id uint64, buf []byte) error {
	if err := checkAccess(id, buf, a.BlockSize(), a.BlockCount()); err != nil {
		return err
	}
	return a.sectored.WriteSector(id, buf)
}

// Flush is a no-op; the device drivers write through.
func (a *DeviceAdapter) Flush() error {
	return nil
}
