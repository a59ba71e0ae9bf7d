package boot

import (
	"encoding/binary"
	"testing"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"bearos/pkg/config"
	"bearos/pkg/device"
	"bearos/pkg/vfs"
)

func TestInitStorageFallsBackToTempfs(t *testing.T) {
	cfg := config.Default()
	st, err := InitStorage(cfg, device.NewRegistry(), log.NewNopLogger())
	require.NoError(t, err)

	require.Equal(t, "tempfs", st.Root.Name())

	// The boot directories exist on the in-memory root.
	for _, dir := range cfg.Storage.BootDirs {
		meta, err := st.Manager.Metadata(dir)
		require.NoError(t, err, dir)
		require.Equal(t, vfs.Directory, meta.Type)
	}

	// The process-wide accessors are installed.
	mgr, err := vfs.Default()
	require.NoError(t, err)
	require.Same(t, st.Manager, mgr)
	fds, err := vfs.Fds()
	require.NoError(t, err)
	require.Same(t, st.Fds, fds)
}

func TestInitStorageUsableEndToEnd(t *testing.T) {
	st, err := InitStorage(config.Default(), device.NewRegistry(), log.NewNopLogger())
	require.NoError(t, err)

	require.NoError(t, st.Manager.CreateFile("/tmp/boot.log"))
	fd, err := st.Fds.Open("/tmp/boot.log", vfs.FlagRead|vfs.FlagWrite)
	require.NoError(t, err)
	require.GreaterOrEqual(t, fd, uint32(3))

	_, err = st.Fds.Write(fd, []byte("ok"))
	require.NoError(t, err)
	require.NoError(t, st.Fds.Close(fd))
}

// fatImage builds a minimal FAT12 volume with an empty root directory.
func fatImage(t *testing.T) []byte {
	t.Helper()
	img := make([]byte, 64*512)
	copy(img[3:11], "BEAROS  ")
	binary.LittleEndian.PutUint16(img[11:13], 512) // bytes per sector
	img[13] = 1                                    // sectors per cluster
	binary.LittleEndian.PutUint16(img[14:16], 1)   // reserved sectors
	img[16] = 1                                    // FAT count
	binary.LittleEndian.PutUint16(img[17:19], 16)  // root entries
	binary.LittleEndian.PutUint16(img[19:21], 64)  // total sectors
	binary.LittleEndian.PutUint16(img[22:24], 1)   // sectors per FAT
	img[66] = 0x29
	return img
}

func TestInitStorageMountsFATRoot(t *testing.T) {
	registry := device.NewRegistry()
	registry.Register(device.NewImageFromBytes("disk0", fatImage(t)))

	st, err := InitStorage(config.Default(), registry, log.NewNopLogger())
	require.NoError(t, err)
	require.Equal(t, "FAT12", st.Root.Name())

	// Boot directories cannot be created on the read-only root; boot
	// proceeds regardless.
	entries, err := st.Manager.ReadDir("/")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestInitStorageIgnoresNonFATDevice(t *testing.T) {
	registry := device.NewRegistry()
	registry.Register(device.NewImageFromBytes("disk0", make([]byte, 64*512)))

	st, err := InitStorage(config.Default(), registry, log.NewNopLogger())
	require.NoError(t, err)
	require.Equal(t, "tempfs", st.Root.Name())
}

func TestNewRAMDisk(t *testing.T) {
	disk, err := NewRAMDisk(config.Default())
	require.NoError(t, err)
	require.Equal(t, uint64(2048), disk.BlockCount())
	require.Equal(t, 512, disk.BlockSize())
}
