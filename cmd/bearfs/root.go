package main

import (
	"io"
	"os"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"bearos/pkg/block"
	"bearos/pkg/device"
	"bearos/pkg/vfs/fatfs"
)

var (
	configPath string
	verbose    bool
)

// NewRootCmd builds the bearfs command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bearfs",
		Short: "Inspect FAT disk images and exercise the BearOS storage stack",
		Long: `bearfs inspects FAT12/16/32 disk images with the same driver the
BearOS kernel mounts at boot, and can run the boot sequence against an
in-memory filesystem.

Examples:
  # Show the volume geometry of a disk image
  bearfs info disk.img

  # List the root directory
  bearfs ls disk.img /

  # Print a file
  bearfs cat disk.img /boot/kernel.bin

  # Run the boot sequence with an in-memory root
  bearfs demo`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log stack assembly steps")

	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newCatCmd())
	cmd.AddCommand(newStatCmd())
	cmd.AddCommand(newDemoCmd())
	return cmd
}

// newLogger returns a stdout logger, silenced unless --verbose is set.
func newLogger() log.Logger {
	if verbose {
		return log.NewLogger(os.Stdout)
	}
	return log.NewNopLogger()
}

// mountImage opens a disk image and mounts the FAT volume on it, going
// through the same adapter and cache the boot path uses.
func mountImage(path string) (*fatfs.FS, io.Closer, error) {
	img, err := device.OpenImage(path)
	if err != nil {
		return nil, nil, err
	}

	var bd block.BlockDevice = block.NewDeviceAdapter(img)
	bd = block.NewCache(bd, 64)

	fs, err := fatfs.New(bd)
	if err != nil {
		img.Close()
		return nil, nil, err
	}
	return fs, img, nil
}
