// Package boot assembles the storage stack: the VFS manager and
// descriptor table, a block device from the device registry, a FAT mount
// when a volume is found and a tempfs root otherwise.
package boot

import (
	"errors"
	"fmt"

	"cosmossdk.io/log"

	"bearos/pkg/block"
	"bearos/pkg/config"
	"bearos/pkg/device"
	"bearos/pkg/vfs"
	"bearos/pkg/vfs/fatfs"
	"bearos/pkg/vfs/tempfs"
)

// Storage is the assembled stack handed to the rest of the system.
type Storage struct {
	Manager *vfs.Manager
	Fds     *vfs.FdTable
	Root    vfs.FileSystem
}

// InitStorage brings up the storage stack and installs the process-wide
// manager and descriptor table.
//
// When the registry holds a block device carrying a FAT volume, that
// volume becomes the root filesystem. Any failure along that path is
// logged and the system falls back to an in-memory root, so boot always
// ends with a usable filesystem.
func InitStorage(cfg *config.Config, registry *device.Registry, logger log.Logger) (*Storage, error) {
	mgr := vfs.Init()
	fds := vfs.InitFdTable(mgr)

	if cfg.Storage.Image != "" {
		img, err := device.OpenImage(cfg.Storage.Image)
		if err != nil {
			logger.Warn("disk image unavailable", "path", cfg.Storage.Image, "err", err)
		} else {
			registry.Register(img)
			logger.Info("registered disk image", "path", cfg.Storage.Image)
		}
	}

	root := probeRoot(cfg, registry, logger)
	if err := mgr.Mount("/", root); err != nil {
		return nil, fmt.Errorf("mount root: %w", err)
	}
	logger.Info("mounted root filesystem", "fs", root.Name())

	for _, dir := range cfg.Storage.BootDirs {
		if err := mgr.CreateDirectory(dir); err != nil {
			// FAT roots reject mkdir; the system still boots.
			if errors.Is(err, vfs.ErrNotImplemented) {
				logger.Debug("skipping boot directory on read-only root", "dir", dir)
				continue
			}
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	return &Storage{Manager: mgr, Fds: fds, Root: root}, nil
}

// probeRoot picks the root filesystem: a FAT volume on the first block
// device when one mounts, a tempfs otherwise.
func probeRoot(cfg *config.Config, registry *device.Registry, logger log.Logger) vfs.FileSystem {
	dev, err := registry.FirstBlock()
	if err != nil {
		logger.Info("no block device registered, using in-memory root")
		return tempfs.New("tempfs")
	}

	var bd block.BlockDevice = block.NewDeviceAdapter(dev)
	if cfg.Storage.CacheBlocks > 0 {
		bd = block.NewCache(bd, cfg.Storage.CacheBlocks)
	}

	fs, err := fatfs.New(bd)
	if err != nil {
		logger.Warn("no FAT volume on block device, using in-memory root",
			"device", dev.Name(), "err", err)
		return tempfs.New("tempfs")
	}
	logger.Info("found FAT volume", "device", dev.Name(), "type", fs.Name())
	return fs
}

// NewRAMDisk builds the scratch RAM disk described by the configuration.
func NewRAMDisk(cfg *config.Config) (*block.RAMDisk, error) {
	return block.NewRAMDisk(cfg.Storage.RAMDiskBlocks, cfg.Storage.BlockSize)
}
