package fatfs

import (
	"fmt"

	"bearos/pkg/block"
	"bearos/pkg/vfs"
)

// FS is a mounted FAT volume. All geometry is derived once in New and
// never changes afterwards, so the driver needs no lock of its own; the
// block device serializes sector access.
type FS struct {
	device block.BlockDevice

	fatType           Type
	bytesPerSector    uint16
	sectorsPerCluster uint8
	sectorsPerFat     uint32
	fatCount          uint8
	reservedSectors   uint16
	rootEntryCount    uint16
	rootDirSectors    uint32
	firstFatSector    uint32
	firstDataSector   uint32
	totalSectors      uint32
	totalClusters     uint32
	rootCluster       uint32

	oemName     string
	volumeID    uint32
	volumeLabel string
}

// Info is a snapshot of the volume geometry, for inspection tools.
type Info struct {
	Type              Type
	OEMName           string
	VolumeID          uint32
	VolumeLabel       string
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	FatCount          uint8
	SectorsPerFat     uint32
	TotalSectors      uint32
	TotalClusters     uint32
	RootCluster       uint32
}

// New mounts the FAT volume on device. The boot sector is read from
// block 0 and the volume geometry derived from it; the FAT variant
// follows from the cluster count.
func New(device block.BlockDevice) (*FS, error) {
	buf := make([]byte, device.BlockSize())
	if err := device.ReadBlock(0, buf); err != nil {
		return nil, fmt.Errorf("read boot sector: %v: %w", err, vfs.ErrInvalidData)
	}

	bs, err := parseBootSector(buf)
	if err != nil {
		return nil, err
	}
	if int(bs.bytesPerSector) != device.BlockSize() {
		return nil, fmt.Errorf("volume sector size %d, device block size %d: %w",
			bs.bytesPerSector, device.BlockSize(), vfs.ErrUnsupportedFeature)
	}

	f := &FS{
		device:            device,
		bytesPerSector:    bs.bytesPerSector,
		sectorsPerCluster: bs.sectorsPerClust,
		sectorsPerFat:     bs.sectorsPerFat(),
		fatCount:          bs.fatCount,
		reservedSectors:   bs.reservedSectors,
		rootEntryCount:    bs.rootEntryCount,
		totalSectors:      bs.totalSectors(),
		oemName:           bs.oemName,
		volumeID:          bs.volumeID,
		volumeLabel:       bs.volumeLabel,
	}

	f.rootDirSectors = (uint32(f.rootEntryCount)*dirEntrySize + uint32(f.bytesPerSector) - 1) /
		uint32(f.bytesPerSector)
	f.firstFatSector = uint32(f.reservedSectors)
	f.firstDataSector = uint32(f.reservedSectors) + uint32(f.fatCount)*f.sectorsPerFat + f.rootDirSectors

	if f.totalSectors < f.firstDataSector {
		return nil, fmt.Errorf("data area past volume end: %w", vfs.ErrInvalidData)
	}
	dataSectors := f.totalSectors - f.firstDataSector
	f.totalClusters = dataSectors / uint32(f.sectorsPerCluster)

	f.fatType = classify(f.totalClusters)
	if f.fatType == Type32 {
		f.rootCluster = bs.rootCluster
	}

	return f, nil
}

// Info returns the volume geometry.
func (f *FS) Info() Info {
	return Info{
		Type:              f.fatType,
		OEMName:           f.oemName,
		VolumeID:          f.volumeID,
		VolumeLabel:       f.volumeLabel,
		BytesPerSector:    f.bytesPerSector,
		SectorsPerCluster: f.sectorsPerCluster,
		ReservedSectors:   f.reservedSectors,
		FatCount:          f.fatCount,
		SectorsPerFat:     f.sectorsPerFat,
		TotalSectors:      f.totalSectors,
		TotalClusters:     f.totalClusters,
		RootCluster:       f.rootCluster,
	}
}

// Type returns the FAT variant.
func (f *FS) Type() Type {
	return f.fatType
}

// readRootDirectory returns the entries of the root directory. FAT12/16
// keep the root at a fixed location between the FATs and the data area;
// FAT32 roots are ordinary cluster chains.
func (f *FS) readRootDirectory() ([]dirEntry, error) {
	if f.fatType == Type32 {
		return f.readDirectory(f.rootCluster)
	}

	sectorSize := uint32(f.bytesPerSector)
	buf := make([]byte, f.rootDirSectors*sectorSize)
	first := uint32(f.reservedSectors) + uint32(f.fatCount)*f.sectorsPerFat
	for i := uint32(0); i < f.rootDirSectors; i++ {
		off := i * sectorSize
		if err := f.readSector(first+i, buf[off:off+sectorSize]); err != nil {
			return nil, err
		}
	}
	return parseDirEntries(buf), nil
}

// readDirectory returns the entries of the directory whose data starts
// at cluster.
func (f *FS) readDirectory(cluster uint32) ([]dirEntry, error) {
	clusters, err := f.chain(cluster)
	if err != nil {
		return nil, err
	}

	bpc := f.bytesPerCluster()
	buf := make([]byte, len(clusters)*bpc)
	for i, c := range clusters {
		if err := f.readCluster(c, buf[i*bpc:(i+1)*bpc]); err != nil {
			return nil, err
		}
	}
	return parseDirEntries(buf), nil
}

// rootEntry returns a synthetic directory entry for the volume root.
func (f *FS) rootEntry() dirEntry {
	e := dirEntry{attr: attrDirectory}
	for i := range e.name {
		e.name[i] = ' '
	}
	for i := range e.ext {
		e.ext[i] = ' '
	}
	if f.fatType == Type32 {
		e.clusterLow = uint16(f.rootCluster)
		e.clusterHigh = uint16(f.rootCluster >> 16)
	}
	return e
}

// resolve walks path from the root and returns the matching entry.
func (f *FS) resolve(path string) (dirEntry, error) {
	if err := vfs.ValidatePath(path); err != nil {
		return dirEntry{}, err
	}
	canonical := vfs.Canonical(path)
	components := vfs.SplitPath(canonical)
	if len(components) == 0 {
		return f.rootEntry(), nil
	}

	entries, err := f.readRootDirectory()
	if err != nil {
		return dirEntry{}, err
	}
	for i, component := range components {
		entry, ok := findEntry(entries, component)
		if !ok {
			return dirEntry{}, fmt.Errorf("%s: %w", canonical, vfs.ErrNotFound)
		}
		if i == len(components)-1 {
			return entry, nil
		}
		if !entry.isDirectory() {
			return dirEntry{}, fmt.Errorf("%s: %w", canonical, vfs.ErrNotADirectory)
		}
		entries, err = f.readDirectory(entry.cluster())
		if err != nil {
			return dirEntry{}, err
		}
	}
	return dirEntry{}, fmt.Errorf("%s: %w", canonical, vfs.ErrNotFound)
}

// findEntry locates a component among directory entries.
func findEntry(entries []dirEntry, name string) (dirEntry, bool) {
	for _, e := range entries {
		if e.isVolumeLabel() {
			continue
		}
		if e.matchName(name) {
			return e, true
		}
	}
	return dirEntry{}, false
}

// Mount implements vfs.FileSystem. The volume was validated in New.
func (f *FS) Mount() error {
	return nil
}

// Unmount implements vfs.FileSystem.
func (f *FS) Unmount() error {
	return nil
}

// CreateFile implements vfs.FileSystem. The driver is read-only.
func (f *FS) CreateFile(path string) error {
	return vfs.ErrNotImplemented
}

// CreateDirectory implements vfs.FileSystem. The driver is read-only.
func (f *FS) CreateDirectory(path string) error {
	return vfs.ErrNotImplemented
}

// Remove implements vfs.FileSystem. The driver is read-only.
func (f *FS) Remove(path string) error {
	return vfs.ErrNotImplemented
}

// Open implements vfs.FileSystem. Only read access is supported.
func (f *FS) Open(path string, flags vfs.OpenFlag) (*vfs.FileHandle, error) {
	if flags&(vfs.FlagWrite|vfs.FlagAppend|vfs.FlagCreate|vfs.FlagTruncate) != 0 {
		return nil, vfs.ErrNotImplemented
	}
	entry, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	if entry.isDirectory() {
		return nil, fmt.Errorf("%s: %w", path, vfs.ErrIsADirectory)
	}
	return vfs.NewFileHandle(vfs.Canonical(path), f, flags), nil
}

// Metadata implements vfs.FileSystem.
func (f *FS) Metadata(path string) (vfs.Metadata, error) {
	entry, err := f.resolve(path)
	if err != nil {
		return vfs.Metadata{}, err
	}

	meta := vfs.Metadata{
		Type:       vfs.File,
		Size:       uint64(entry.size),
		CreatedAt:  decodeTimestamp(entry.createDate, entry.createTime),
		ModifiedAt: decodeTimestamp(entry.modifyDate, entry.modifyTime),
		AccessedAt: decodeTimestamp(entry.accessDate, 0),
	}
	if entry.isDirectory() {
		meta.Type = vfs.Directory
		meta.Size = 0
	}

	meta.Permissions = vfs.PermOwnerRead | vfs.PermGroupRead | vfs.PermOtherRead
	if entry.attr&attrReadOnly == 0 {
		meta.Permissions |= vfs.PermOwnerWrite | vfs.PermGroupWrite
	}
	if entry.isDirectory() {
		meta.Permissions |= vfs.PermOwnerExec | vfs.PermGroupExec | vfs.PermOtherExec
	}
	return meta, nil
}

// ReadDir implements vfs.FileSystem. Dot entries and the volume label
// are omitted from the listing.
func (f *FS) ReadDir(path string) ([]vfs.DirEntry, error) {
	entry, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	if !entry.isDirectory() {
		return nil, fmt.Errorf("%s: %w", path, vfs.ErrNotADirectory)
	}

	var raw []dirEntry
	if entry.cluster() == 0 && f.fatType != Type32 {
		raw, err = f.readRootDirectory()
	} else {
		raw, err = f.readDirectory(entry.cluster())
	}
	if err != nil {
		return nil, err
	}

	result := make([]vfs.DirEntry, 0, len(raw))
	for _, e := range raw {
		if e.name[0] == '.' || e.isVolumeLabel() {
			continue
		}
		nodeType := vfs.File
		if e.isDirectory() {
			nodeType = vfs.Directory
		}
		result = append(result, vfs.DirEntry{
			Name:  e.displayName(),
			Type:  nodeType,
			Inode: uint64(e.cluster()),
		})
	}
	return result, nil
}

// Rename implements vfs.FileSystem. The driver is read-only.
func (f *FS) Rename(from, to string) error {
	return vfs.ErrNotImplemented
}

// Name implements vfs.FileSystem.
func (f *FS) Name() string {
	return f.fatType.String()
}

// TotalSpace implements vfs.FileSystem.
func (f *FS) TotalSpace() uint64 {
	return uint64(f.totalClusters) * uint64(f.sectorsPerCluster) * uint64(f.bytesPerSector)
}

// AvailableSpace implements vfs.FileSystem. Counting free clusters
// means scanning the whole FAT; report half the volume instead.
func (f *FS) AvailableSpace() uint64 {
	return f.TotalSpace() / 2
}

// ReadAt implements vfs.FileSystem. Reads past the end of the file
// return zero bytes; reads crossing it are clamped to the file size.
func (f *FS) ReadAt(path string, offset uint64, buf []byte) (int, error) {
	entry, err := f.resolve(path)
	if err != nil {
		return 0, err
	}
	if entry.isDirectory() {
		return 0, fmt.Errorf("%s: %w", path, vfs.ErrNotAFile)
	}

	size := uint64(entry.size)
	if offset >= size || len(buf) == 0 {
		return 0, nil
	}
	want := uint64(len(buf))
	if offset+want > size {
		want = size - offset
	}

	bpc := uint64(f.bytesPerCluster())
	clusters, err := f.chain(entry.cluster())
	if err != nil {
		return 0, err
	}

	read := uint64(0)
	clusterBuf := make([]byte, bpc)
	for read < want {
		clusterIndex := (offset + read) / bpc
		if clusterIndex >= uint64(len(clusters)) {
			break
		}
		if err := f.readCluster(clusters[clusterIndex], clusterBuf); err != nil {
			return int(read), err
		}
		inCluster := (offset + read) % bpc
		n := copy(buf[read:want], clusterBuf[inCluster:])
		read += uint64(n)
	}
	return int(read), nil
}

// WriteAt implements vfs.FileSystem. The driver is read-only.
func (f *FS) WriteAt(path string, offset uint64, buf []byte) (int, error) {
	return 0, vfs.ErrNotImplemented
}
