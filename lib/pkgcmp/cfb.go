// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package pkgcmp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"unicode/utf16"
)

// OLE compound file (CFB, MS-CFB) reading, the container format of
// Windows Installer packages. The file is an array of sectors with a
// FAT describing sector chains; small streams live in a mini-stream
// with its own mini-FAT. This reader resolves every stream to its
// bytes; it does not write.

var cfbMagic = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

// Special FAT sector values.
const (
	cfbMaxRegularSector = 0xfffffffa
	cfbEndOfChain       = 0xfffffffe
	cfbFreeSector       = 0xffffffff
)

const (
	cfbHeaderSize       = 512
	cfbDirEntrySize     = 128
	cfbHeaderDifatCount = 109
	cfbMiniSectorSize   = 64
)

// Directory entry object types.
const (
	cfbObjectStream = 2
	cfbObjectRoot   = 5
)

type cfbDirEntry struct {
	name        string
	objectType  byte
	startSector uint32
	size        uint64
}

type cfbFile struct {
	data       []byte
	sectorSize int
	miniCutoff uint32
	fat        []uint32
	miniFat    []uint32
	entries    []cfbDirEntry
	miniStream []byte
}

// openCompoundFile parses the FAT, directory, mini-FAT, and
// mini-stream of a compound file.
func openCompoundFile(path string) (*cfbFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening compound file %s: %w", path, err)
	}
	if len(data) < cfbHeaderSize {
		return nil, fmt.Errorf("%s: truncated compound file header", path)
	}
	if !bytes.Equal(data[0:8], cfbMagic) {
		return nil, fmt.Errorf("%s: not a compound file (magic %x)", path, data[0:8])
	}

	file := &cfbFile{
		data:       data,
		sectorSize: 1 << binary.LittleEndian.Uint16(data[30:32]),
		miniCutoff: binary.LittleEndian.Uint32(data[56:60]),
	}
	if file.sectorSize != 512 && file.sectorSize != 4096 {
		return nil, fmt.Errorf("%s: invalid sector size %d", path, file.sectorSize)
	}

	if err := file.loadFat(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := file.loadDirectory(binary.LittleEndian.Uint32(data[48:52])); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := file.loadMiniFat(
		binary.LittleEndian.Uint32(data[60:64]),
		binary.LittleEndian.Uint32(data[64:68])); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// sector returns the bytes of regular sector number index. Sector 0
// begins immediately after the 512-byte header for 512-byte sectors;
// for 4096-byte sectors the header region is padded to a full sector.
func (f *cfbFile) sector(index uint32) ([]byte, error) {
	start := (int(index) + 1) * f.sectorSize
	end := start + f.sectorSize
	if start < 0 || end > len(f.data) {
		return nil, fmt.Errorf("sector %d out of range", index)
	}
	return f.data[start:end], nil
}

// chain resolves a FAT sector chain starting at start into its
// concatenated bytes.
func (f *cfbFile) chain(start uint32) ([]byte, error) {
	var out []byte
	seen := 0
	for current := start; current < cfbMaxRegularSector; {
		if seen++; seen > len(f.fat)+1 {
			return nil, fmt.Errorf("FAT chain cycle at sector %d", start)
		}
		sector, err := f.sector(current)
		if err != nil {
			return nil, err
		}
		out = append(out, sector...)
		if int(current) >= len(f.fat) {
			return nil, fmt.Errorf("sector %d has no FAT entry", current)
		}
		current = f.fat[current]
	}
	return out, nil
}

// loadFat builds the FAT from the DIFAT: 109 locations in the header,
// then a chain of DIFAT sectors for larger files.
func (f *cfbFile) loadFat() error {
	var fatSectors []uint32
	for i := 0; i < cfbHeaderDifatCount; i++ {
		entry := binary.LittleEndian.Uint32(f.data[76+i*4 : 80+i*4])
		if entry < cfbMaxRegularSector {
			fatSectors = append(fatSectors, entry)
		}
	}

	entriesPerDifat := f.sectorSize/4 - 1
	difatSector := binary.LittleEndian.Uint32(f.data[68:72])
	for count := 0; difatSector < cfbMaxRegularSector; count++ {
		if count > len(f.data)/f.sectorSize {
			return fmt.Errorf("DIFAT chain cycle")
		}
		sector, err := f.sector(difatSector)
		if err != nil {
			return fmt.Errorf("DIFAT: %w", err)
		}
		for i := 0; i < entriesPerDifat; i++ {
			entry := binary.LittleEndian.Uint32(sector[i*4 : i*4+4])
			if entry < cfbMaxRegularSector {
				fatSectors = append(fatSectors, entry)
			}
		}
		difatSector = binary.LittleEndian.Uint32(sector[entriesPerDifat*4:])
	}

	for _, sectorNumber := range fatSectors {
		sector, err := f.sector(sectorNumber)
		if err != nil {
			return fmt.Errorf("FAT: %w", err)
		}
		for i := 0; i+4 <= len(sector); i += 4 {
			f.fat = append(f.fat, binary.LittleEndian.Uint32(sector[i:i+4]))
		}
	}
	return nil
}

// loadDirectory walks the directory chain and decodes its entries.
// The mini-stream (the root entry's stream) is resolved here because
// small-stream reads need it.
func (f *cfbFile) loadDirectory(firstDirSector uint32) error {
	directory, err := f.chain(firstDirSector)
	if err != nil {
		return fmt.Errorf("directory: %w", err)
	}

	for offset := 0; offset+cfbDirEntrySize <= len(directory); offset += cfbDirEntrySize {
		raw := directory[offset : offset+cfbDirEntrySize]
		nameLength := int(binary.LittleEndian.Uint16(raw[64:66]))
		if nameLength < 2 || nameLength > 64 {
			continue // unused entry
		}
		codeUnits := make([]uint16, (nameLength-2)/2)
		for i := range codeUnits {
			codeUnits[i] = binary.LittleEndian.Uint16(raw[i*2 : i*2+2])
		}
		f.entries = append(f.entries, cfbDirEntry{
			name:        string(utf16.Decode(codeUnits)),
			objectType:  raw[66],
			startSector: binary.LittleEndian.Uint32(raw[116:120]),
			size:        binary.LittleEndian.Uint64(raw[120:128]),
		})
	}
	if len(f.entries) == 0 || f.entries[0].objectType != cfbObjectRoot {
		return fmt.Errorf("missing root directory entry")
	}

	root := f.entries[0]
	if root.size > 0 {
		miniStream, err := f.chain(root.startSector)
		if err != nil {
			return fmt.Errorf("mini-stream: %w", err)
		}
		if uint64(len(miniStream)) < root.size {
			return fmt.Errorf("mini-stream shorter than root entry size")
		}
		f.miniStream = miniStream[:root.size]
	}
	return nil
}

func (f *cfbFile) loadMiniFat(firstMiniFatSector, miniFatSectorCount uint32) error {
	if firstMiniFatSector >= cfbMaxRegularSector || miniFatSectorCount == 0 {
		return nil
	}
	miniFatBytes, err := f.chain(firstMiniFatSector)
	if err != nil {
		return fmt.Errorf("mini-FAT: %w", err)
	}
	for i := 0; i+4 <= len(miniFatBytes); i += 4 {
		f.miniFat = append(f.miniFat, binary.LittleEndian.Uint32(miniFatBytes[i:i+4]))
	}
	return nil
}

// readStream returns the bytes of a stream entry, resolving through
// the mini-stream for streams below the mini cutoff.
func (f *cfbFile) readStream(entry cfbDirEntry) ([]byte, error) {
	if entry.size == 0 {
		return nil, nil
	}

	if uint64(entry.size) >= uint64(f.miniCutoff) {
		data, err := f.chain(entry.startSector)
		if err != nil {
			return nil, fmt.Errorf("stream %q: %w", entry.name, err)
		}
		if uint64(len(data)) < entry.size {
			return nil, fmt.Errorf("stream %q truncated", entry.name)
		}
		return data[:entry.size], nil
	}

	// Mini-stream chain: 64-byte sectors within the root stream.
	var data []byte
	seen := 0
	for current := entry.startSector; current < cfbMaxRegularSector; {
		if seen++; seen > len(f.miniFat)+1 {
			return nil, fmt.Errorf("stream %q: mini-FAT chain cycle", entry.name)
		}
		start := int(current) * cfbMiniSectorSize
		end := start + cfbMiniSectorSize
		if start < 0 || end > len(f.miniStream) {
			return nil, fmt.Errorf("stream %q: mini sector %d out of range", entry.name, current)
		}
		data = append(data, f.miniStream[start:end]...)
		if int(current) >= len(f.miniFat) {
			return nil, fmt.Errorf("stream %q: mini sector %d has no mini-FAT entry", entry.name, current)
		}
		current = f.miniFat[current]
	}
	if uint64(len(data)) < entry.size {
		return nil, fmt.Errorf("stream %q truncated", entry.name)
	}
	return data[:entry.size], nil
}
