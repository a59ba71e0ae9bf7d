// Package config loads the boot-time storage configuration from a TOML
// file. A missing file is not an error; the defaults describe a
// self-contained in-memory system.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Validation errors.
var (
	ErrInvalidBlockSize = errors.New("config: block_size must be a positive power of two")
	ErrInvalidRAMDisk   = errors.New("config: ramdisk_blocks must be non-zero")
)

// Config is the top-level configuration file layout.
type Config struct {
	Storage StorageConfig `toml:"storage"`
}

// StorageConfig configures the storage stack assembled at boot.
type StorageConfig struct {
	// BlockSize is the block size in bytes for the RAM disk and cache.
	BlockSize int `toml:"block_size"`

	// RAMDiskBlocks is the RAM disk capacity used when no disk image is
	// configured or the image fails to mount.
	RAMDiskBlocks uint64 `toml:"ramdisk_blocks"`

	// Image is an optional disk-image path registered as a block device
	// and probed for a FAT volume.
	Image string `toml:"image"`

	// CacheBlocks sizes the LRU block cache in front of the device.
	// Zero disables the cache.
	CacheBlocks int `toml:"cache_blocks"`

	// BootDirs are created on the root filesystem after mounting.
	BootDirs []string `toml:"boot_dirs"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			BlockSize:     512,
			RAMDiskBlocks: 2048,
			CacheBlocks:   64,
			BootDirs:      []string{"/bin", "/home", "/etc", "/tmp"},
		},
	}
}

// Load reads the TOML file at path and merges it over the defaults.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	merge(cfg, &file)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge overlays the values set in src onto dst.
func merge(dst, src *Config) {
	if src.Storage.BlockSize != 0 {
		dst.Storage.BlockSize = src.Storage.BlockSize
	}
	if src.Storage.RAMDiskBlocks != 0 {
		dst.Storage.RAMDiskBlocks = src.Storage.RAMDiskBlocks
	}
	if src.Storage.Image != "" {
		dst.Storage.Image = src.Storage.Image
	}
	if src.Storage.CacheBlocks != 0 {
		dst.Storage.CacheBlocks = src.Storage.CacheBlocks
	}
	if src.Storage.BootDirs != nil {
		dst.Storage.BootDirs = src.Storage.BootDirs
	}
}

// Validate rejects geometry the block layer cannot serve.
func (c *Config) Validate() error {
	bs := c.Storage.BlockSize
	if bs <= 0 || bs&(bs-1) != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, bs)
	}
	if c.Storage.RAMDiskBlocks == 0 {
		return ErrInvalidRAMDisk
	}
	return nil
}
