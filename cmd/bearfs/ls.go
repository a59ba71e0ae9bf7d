package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bearos/pkg/vfs"
)

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <image> [path]",
		Short: "List a directory on a FAT disk image",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, closer, err := mountImage(args[0])
			if err != nil {
				return err
			}
			defer closer.Close()

			path := "/"
			if len(args) == 2 {
				path = args[1]
			}

			entries, err := fs.ReadDir(path)
			if err != nil {
				return err
			}

			dirColor := color.New(color.FgBlue, color.Bold)
			for _, e := range entries {
				meta, err := fs.Metadata(vfs.JoinPath(path, e.Name))
				if err != nil {
					return err
				}
				if e.Type == vfs.Directory {
					fmt.Printf("%-5s %10s  ", e.Type, "-")
					dirColor.Println(e.Name)
					continue
				}
				fmt.Printf("%-5s %10d  %s\n", e.Type, meta.Size, e.Name)
			}
			return nil
		},
	}
}
