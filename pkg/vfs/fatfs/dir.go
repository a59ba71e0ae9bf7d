package fatfs

import (
	"encoding/binary"
	"strings"
	"time"
)

// Directory-entry attribute bits.
const (
	attrReadOnly  = 0x01
	attrHidden    = 0x02
	attrSystem    = 0x04
	attrVolumeID  = 0x08
	attrDirectory = 0x10
	attrArchive   = 0x20
	attrLongName  = attrReadOnly | attrHidden | attrSystem | attrVolumeID
)

// On-disk directory entry size.
const dirEntrySize = 32

// Marker bytes in the first name byte.
const (
	entryFree    = 0xE5
	entryEndMark = 0x00
)

// dirEntry is a decoded 8.3 directory entry.
type dirEntry struct {
	name        [8]byte
	ext         [3]byte
	attr        uint8
	createTime  uint16
	createDate  uint16
	accessDate  uint16
	clusterHigh uint16
	modifyTime  uint16
	modifyDate  uint16
	clusterLow  uint16
	size        uint32
}

// decodeDirEntry decodes one 32-byte record.
func decodeDirEntry(buf []byte) dirEntry {
	var e dirEntry
	copy(e.name[:], buf[0:8])
	copy(e.ext[:], buf[8:11])
	e.attr = buf[11]
	e.createTime = binary.LittleEndian.Uint16(buf[14:16])
	e.createDate = binary.LittleEndian.Uint16(buf[16:18])
	e.accessDate = binary.LittleEndian.Uint16(buf[18:20])
	e.clusterHigh = binary.LittleEndian.Uint16(buf[20:22])
	e.modifyTime = binary.LittleEndian.Uint16(buf[22:24])
	e.modifyDate = binary.LittleEndian.Uint16(buf[24:26])
	e.clusterLow = binary.LittleEndian.Uint16(buf[26:28])
	e.size = binary.LittleEndian.Uint32(buf[28:32])
	return e
}

// parseDirEntries decodes the live entries from raw directory bytes.
// Free slots and long-name records are skipped; the 0x00 end marker
// stops the scan.
func parseDirEntries(buf []byte) []dirEntry {
	var entries []dirEntry
	for off := 0; off+dirEntrySize <= len(buf); off += dirEntrySize {
		first := buf[off]
		if first == entryEndMark {
			break
		}
		if first == entryFree {
			continue
		}
		e := decodeDirEntry(buf[off : off+dirEntrySize])
		if e.attr&attrLongName == attrLongName {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// isDirectory reports whether the entry describes a directory.
func (e *dirEntry) isDirectory() bool {
	return e.attr&attrDirectory != 0
}

// isVolumeLabel reports whether the entry is the volume label.
func (e *dirEntry) isVolumeLabel() bool {
	return e.attr&attrVolumeID != 0
}

// cluster returns the entry's first data cluster.
func (e *dirEntry) cluster() uint32 {
	return uint32(e.clusterHigh)<<16 | uint32(e.clusterLow)
}

// displayName joins the 8.3 name and extension, trimming the space
// padding. "README  " + "TXT" becomes "README.TXT".
func (e *dirEntry) displayName() string {
	base := trimPadding(e.name[:])
	ext := trimPadding(e.ext[:])
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// matchName compares a path component against the entry name,
// case-insensitively.
func (e *dirEntry) matchName(name string) bool {
	return strings.EqualFold(e.displayName(), name)
}

// decodeTimestamp converts FAT date and time words to a time.Time.
// Dates count years from 1980; times have two-second resolution. A zero
// date yields the zero time.
func decodeTimestamp(date, tod uint16) time.Time {
	if date == 0 {
		return time.Time{}
	}
	year := 1980 + int(date>>9)
	month := time.Month(date >> 5 & 0x0F)
	day := int(date & 0x1F)
	hour := int(tod >> 11)
	minute := int(tod >> 5 & 0x3F)
	second := int(tod&0x1F) * 2
	return time.Date(year, month, day, hour, minute, second, 0, time.UTC)
}
