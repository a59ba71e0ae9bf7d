// Package device provides the generic device registry the storage stack
// probes at boot. Devices advertise sector-level access through the
// Sectored capability interface; callers query for it with a type
// assertion instead of relying on runtime type identity.
package device

import (
	"errors"
	"sync"
)

// Device-level errors, propagated unchanged through the block layer.
var (
	ErrDeviceNotFound = errors.New("device: not found")
	ErrDeviceTimeout  = errors.New("device: timeout")
	ErrDeviceError    = errors.New("device: I/O error")
)

// Type classifies a device.
type Type uint8

const (
	Unknown Type = iota
	Block
	Character
	Network
)

// Device is the minimal contract every registered device meets.
type Device interface {
	Name() string
	Type() Type
}

// Sectored is the capability of sector-addressed devices. A Device that
// does not implement it cannot back a filesystem.
type Sectored interface {
	Device

	// BlockSize returns the sector size in bytes.
	BlockSize() int

	// BlockCount returns the number of addressable sectors.
	BlockCount() uint64

	// ReadSector reads one sector into buf; len(buf) must equal BlockSize.
	ReadSector(id uint64, buf []byte) error

	// WriteSector writes one sector from buf; len(buf) must equal BlockSize.
	WriteSector(id uint64, buf []byte) error
}

// Registry holds the devices discovered at boot, in registration order.
type Registry struct {
	mu      sync.Mutex
	devices []Device
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a device.
func (r *Registry) Register(d Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices = append(r.devices, d)
}

// Devices returns a snapshot of all registered devices.
func (r *Registry) Devices() []Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// BlockDevices returns the registered devices classified as block devices.
func (r *Registry) BlockDevices() []Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Device
	for _, d := range r.devices {
		if d.Type() == Block {
			out = append(out, d)
		}
	}
	return out
}

// FirstBlock returns the first registered block device, or
// ErrDeviceNotFound when none exists.
func (r *Registry) FirstBlock() (Device, error) {
	devs := r.BlockDevices()
	if len(devs) == 0 {
		return nil, ErrDeviceNotFound
	}
	return devs[0], nil
}
