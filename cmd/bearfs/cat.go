package main

import (
	"os"

	"github.com/spf13/cobra"

	"bearos/pkg/vfs"
)

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <image> <path>",
		Short: "Print a file from a FAT disk image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, closer, err := mountImage(args[0])
			if err != nil {
				return err
			}
			defer closer.Close()

			handle, err := fs.Open(args[1], vfs.FlagRead)
			if err != nil {
				return err
			}
			defer handle.Close()

			buf := make([]byte, 32*1024)
			for {
				n, err := handle.Read(buf)
				if err != nil {
					return err
				}
				if n == 0 {
					return nil
				}
				if _, err := os.Stdout.Write(buf[:n]); err != nil {
					return err
				}
			}
		},
	}
}
