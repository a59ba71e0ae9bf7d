package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bearos/pkg/boot"
	"bearos/pkg/config"
	"bearos/pkg/device"
	"bearos/pkg/vfs"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the boot sequence and exercise the storage stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			st, err := boot.InitStorage(cfg, device.NewRegistry(), newLogger())
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			bold.Println("Storage stack up")
			for _, mp := range st.Manager.MountPoints() {
				fmt.Printf("  %-8s at %s (%d bytes free)\n",
					mp.FS.Name(), mp.Path, mp.FS.AvailableSpace())
			}

			// A small end-to-end walk: create, write, read back, list.
			const path = "/home/demo.txt"
			if err := st.Manager.CreateFile(path); err != nil {
				return err
			}
			fd, err := st.Fds.Open(path, vfs.FlagRead|vfs.FlagWrite)
			if err != nil {
				return err
			}
			if _, err := st.Fds.Write(fd, []byte("hello from bearfs\n")); err != nil {
				return err
			}
			if err := st.Fds.Seek(fd, 0); err != nil {
				return err
			}
			buf := make([]byte, 64)
			n, err := st.Fds.Read(fd, buf)
			if err != nil {
				return err
			}
			if err := st.Fds.Close(fd); err != nil {
				return err
			}

			bold.Println("Round trip")
			fmt.Printf("  wrote and read back %d bytes from %s: %q\n", n, path, buf[:n])

			entries, err := st.Manager.ReadDir("/")
			if err != nil {
				return err
			}
			bold.Println("Root directory")
			for _, e := range entries {
				fmt.Printf("  %-5s %s\n", e.Type, e.Name)
			}
			return nil
		},
	}
}
