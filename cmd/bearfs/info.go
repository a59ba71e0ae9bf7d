package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <image>",
		Short: "Show the volume geometry of a FAT disk image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, closer, err := mountImage(args[0])
			if err != nil {
				return err
			}
			defer closer.Close()

			info := fs.Info()
			bold := color.New(color.Bold)

			bold.Printf("%s volume", info.Type)
			if info.VolumeLabel != "" {
				fmt.Printf("  %q", info.VolumeLabel)
			}
			fmt.Println()

			fmt.Printf("  OEM name:            %s\n", info.OEMName)
			fmt.Printf("  Volume ID:           %08X\n", info.VolumeID)
			fmt.Printf("  Bytes per sector:    %d\n", info.BytesPerSector)
			fmt.Printf("  Sectors per cluster: %d\n", info.SectorsPerCluster)
			fmt.Printf("  Reserved sectors:    %d\n", info.ReservedSectors)
			fmt.Printf("  FAT copies:          %d\n", info.FatCount)
			fmt.Printf("  Sectors per FAT:     %d\n", info.SectorsPerFat)
			fmt.Printf("  Total sectors:       %d\n", info.TotalSectors)
			fmt.Printf("  Total clusters:      %d\n", info.TotalClusters)
			if info.RootCluster != 0 {
				fmt.Printf("  Root cluster:        %d\n", info.RootCluster)
			}
			fmt.Printf("  Capacity:            %d bytes\n", fs.TotalSpace())
			return nil
		},
	}
}
