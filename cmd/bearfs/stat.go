package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <image> <path>",
		Short: "Show metadata for a node on a FAT disk image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, closer, err := mountImage(args[0])
			if err != nil {
				return err
			}
			defer closer.Close()

			meta, err := fs.Metadata(args[1])
			if err != nil {
				return err
			}

			fmt.Printf("Path:        %s\n", args[1])
			fmt.Printf("Type:        %s\n", meta.Type)
			fmt.Printf("Size:        %d\n", meta.Size)
			fmt.Printf("Permissions: %03o\n", meta.Permissions)
			printTime := func(label string, t time.Time) {
				if t.IsZero() {
					fmt.Printf("%s -\n", label)
					return
				}
				fmt.Printf("%s %s\n", label, t.Format(time.RFC3339))
			}
			printTime("Created:    ", meta.CreatedAt)
			printTime("Modified:   ", meta.ModifiedAt)
			printTime("Accessed:   ", meta.AccessedAt)
			return nil
		},
	}
}
