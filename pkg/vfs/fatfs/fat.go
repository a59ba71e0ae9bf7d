package fatfs

import (
	"encoding/binary"
	"errors"
	"fmt"

	"bearos/pkg/vfs"
)

// Driver errors
var (
	ErrInvalidSignature = errors.New("fatfs: invalid boot signature")
	ErrBadCluster       = errors.New("fatfs: bad cluster in chain")
	ErrChainCycle       = errors.New("fatfs: cluster chain exceeds volume size")
)

// Type identifies the FAT variant of a mounted volume.
type Type uint8

const (
	Type12 Type = iota
	Type16
	Type32
)

// String returns the conventional volume label for the variant.
func (t Type) String() string {
	switch t {
	case Type12:
		return "FAT12"
	case Type16:
		return "FAT16"
	default:
		return "FAT32"
	}
}

// classify picks the FAT variant from the data-area cluster count. The
// thresholds are Microsoft's: the count alone decides, never the fs-type
// label in the boot sector.
func classify(totalClusters uint32) Type {
	switch {
	case totalClusters < 4085:
		return Type12
	case totalClusters < 65525:
		return Type16
	default:
		return Type32
	}
}

// Canonical cluster-value markers, in the FAT32 numeric range. Entries
// read from FAT12 and FAT16 tables are normalized to these before
// comparison, so chain walks test against one set of constants.
const (
	endOfChain = 0x0FFFFFF8
	badCluster = 0x0FFFFFF7

	eoc12 = 0x0FF8
	bad12 = 0x0FF7
	eoc16 = 0xFFF8
	bad16 = 0xFFF7
)

// clusterToSector converts a data-area cluster number to its first
// sector. Cluster numbering starts at 2.
func (f *FS) clusterToSector(cluster uint32) uint32 {
	return f.firstDataSector + (cluster-2)*uint32(f.sectorsPerCluster)
}

// readSector reads one volume sector through the block device.
func (f *FS) readSector(sector uint32, buf []byte) error {
	if err := f.device.ReadBlock(uint64(sector), buf); err != nil {
		return fmt.Errorf("sector %d: %v: %w", sector, err, vfs.ErrInvalidData)
	}
	return nil
}

// fatEntry reads the FAT entry for cluster and normalizes it to the
// canonical 28-bit value space.
//
// FAT12 packs two entries into three bytes; an entry can straddle a
// sector boundary, in which case its second byte is stitched from the
// following sector. FAT16 entries are two bytes, FAT32 four with the
// top nibble reserved.
func (f *FS) fatEntry(cluster uint32) (uint32, error) {
	var fatOffset uint32
	switch f.fatType {
	case Type12:
		fatOffset = cluster + cluster/2
	case Type16:
		fatOffset = cluster * 2
	default:
		fatOffset = cluster * 4
	}

	sectorSize := uint32(f.bytesPerSector)
	fatSector := f.firstFatSector + fatOffset/sectorSize
	entryOffset := fatOffset % sectorSize

	buf := make([]byte, sectorSize)
	if err := f.readSector(fatSector, buf); err != nil {
		return 0, err
	}

	switch f.fatType {
	case Type12:
		var raw uint32
		if entryOffset < sectorSize-1 {
			raw = uint32(buf[entryOffset]) | uint32(buf[entryOffset+1])<<8
		} else {
			// Entry straddles the sector boundary.
			next := make([]byte, sectorSize)
			if err := f.readSector(fatSector+1, next); err != nil {
				return 0, err
			}
			raw = uint32(buf[entryOffset]) | uint32(next[0])<<8
		}
		if cluster&1 == 0 {
			raw &= 0xFFF
		} else {
			raw >>= 4
		}
		return normalize12(raw), nil
	case Type16:
		raw := uint32(binary.LittleEndian.Uint16(buf[entryOffset : entryOffset+2]))
		return normalize16(raw), nil
	default:
		raw := binary.LittleEndian.Uint32(buf[entryOffset : entryOffset+4])
		return raw & 0x0FFFFFFF, nil
	}
}

// normalize12 maps FAT12 reserved values into the canonical range.
func normalize12(v uint32) uint32 {
	switch {
	case v >= eoc12:
		return endOfChain
	case v == bad12:
		return badCluster
	default:
		return v
	}
}

// normalize16 maps FAT16 reserved values into the canonical range.
func normalize16(v uint32) uint32 {
	switch {
	case v >= eoc16:
		return endOfChain
	case v == bad16:
		return badCluster
	default:
		return v
	}
}

// nextCluster follows the chain one step. It reports the end of the
// chain with ok=false and rejects bad-cluster markers.
func (f *FS) nextCluster(cluster uint32) (next uint32, ok bool, err error) {
	v, err := f.fatEntry(cluster)
	if err != nil {
		return 0, false, err
	}
	if v == badCluster {
		return 0, false, fmt.Errorf("after cluster %d: %w", cluster, ErrBadCluster)
	}
	if v >= endOfChain || v < 2 {
		return 0, false, nil
	}
	return v, true, nil
}

// readCluster reads a whole cluster into buf, which must hold at least
// bytesPerCluster bytes.
func (f *FS) readCluster(cluster uint32, buf []byte) error {
	if len(buf) < f.bytesPerCluster() {
		return fmt.Errorf("cluster buffer %d bytes: %w", len(buf), vfs.ErrInvalidParameter)
	}
	first := f.clusterToSector(cluster)
	sectorSize := int(f.bytesPerSector)
	for i := 0; i < int(f.sectorsPerCluster); i++ {
		off := i * sectorSize
		if err := f.readSector(first+uint32(i), buf[off:off+sectorSize]); err != nil {
			return err
		}
	}
	return nil
}

// bytesPerCluster returns the cluster size in bytes.
func (f *FS) bytesPerCluster() int {
	return int(f.sectorsPerCluster) * int(f.bytesPerSector)
}

// chain collects the cluster chain starting at start. The walk is
// bounded by the volume's total cluster count; a longer chain can only
// mean a cycle in the table.
func (f *FS) chain(start uint32) ([]uint32, error) {
	var clusters []uint32
	cluster := start
	for {
		if uint32(len(clusters)) > f.totalClusters {
			return nil, ErrChainCycle
		}
		clusters = append(clusters, cluster)
		next, ok, err := f.nextCluster(cluster)
		if err != nil {
			return nil, err
		}
		if !ok {
			return clusters, nil
		}
		cluster = next
	}
}
