// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"encoding/binary"
	"os"
	"testing"
	"unicode/utf16"
)

// Stream is one named stream of a compound-file fixture.
type Stream struct {
	Name string
	Data []byte
}

const (
	cfbSectorSize   = 512
	cfbEndOfChain   = 0xfffffffe
	cfbFreeSector   = 0xffffffff
	cfbFatSector    = 0xfffffffd
	cfbNoStream     = 0xffffffff
	cfbFatPerSector = cfbSectorSize / 4
)

// WriteCompoundFile writes an OLE compound file (the MSI container
// format) at path with the given streams. Fixtures declare a mini
// cutoff of 1, so every stream lives in regular sectors and no
// mini-stream is emitted; readers that honor the header handle such
// files like any other.
func WriteCompoundFile(t testing.TB, path string, streams ...Stream) {
	t.Helper()

	directoryEntries := 1 + len(streams)
	directorySectors := (directoryEntries*128 + cfbSectorSize - 1) / cfbSectorSize

	dataSectors := make([]int, len(streams))
	totalDataSectors := 0
	for i, stream := range streams {
		dataSectors[i] = (len(stream.Data) + cfbSectorSize - 1) / cfbSectorSize
		totalDataSectors += dataSectors[i]
	}

	// FAT sizing: the FAT covers its own sectors too, so iterate
	// until stable.
	fatSectors := 1
	for {
		total := fatSectors + directorySectors + totalDataSectors
		needed := (total + cfbFatPerSector - 1) / cfbFatPerSector
		if needed <= fatSectors {
			break
		}
		fatSectors = needed
	}
	totalSectors := fatSectors + directorySectors + totalDataSectors

	// Sector layout: FAT sectors, then directory, then stream data.
	firstDirectorySector := fatSectors
	firstDataSector := fatSectors + directorySectors

	fat := make([]uint32, fatSectors*cfbFatPerSector)
	for i := range fat {
		fat[i] = cfbFreeSector
	}
	for i := 0; i < fatSectors; i++ {
		fat[i] = cfbFatSector
	}
	chainConsecutive := func(start, count int) {
		for i := 0; i < count; i++ {
			if i == count-1 {
				fat[start+i] = cfbEndOfChain
			} else {
				fat[start+i] = uint32(start + i + 1)
			}
		}
	}
	chainConsecutive(firstDirectorySector, directorySectors)
	streamStart := make([]uint32, len(streams))
	next := firstDataSector
	for i := range streams {
		streamStart[i] = uint32(next)
		if dataSectors[i] > 0 {
			chainConsecutive(next, dataSectors[i])
			next += dataSectors[i]
		} else {
			streamStart[i] = cfbEndOfChain
		}
	}

	file := make([]byte, (totalSectors+1)*cfbSectorSize)

	// Header.
	header := file[0:cfbSectorSize]
	copy(header, []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1})
	binary.LittleEndian.PutUint16(header[24:26], 0x003e) // minor version
	binary.LittleEndian.PutUint16(header[26:28], 3)      // major version
	binary.LittleEndian.PutUint16(header[28:30], 0xfffe) // byte order
	binary.LittleEndian.PutUint16(header[30:32], 9)      // sector shift
	binary.LittleEndian.PutUint16(header[32:34], 6)      // mini sector shift
	binary.LittleEndian.PutUint32(header[44:48], uint32(fatSectors))
	binary.LittleEndian.PutUint32(header[48:52], uint32(firstDirectorySector))
	binary.LittleEndian.PutUint32(header[56:60], 1) // mini cutoff
	binary.LittleEndian.PutUint32(header[60:64], cfbEndOfChain)
	binary.LittleEndian.PutUint32(header[68:72], cfbEndOfChain)
	for i := 0; i < 109; i++ {
		value := uint32(cfbFreeSector)
		if i < fatSectors {
			value = uint32(i)
		}
		binary.LittleEndian.PutUint32(header[76+i*4:80+i*4], value)
	}

	sectorOffset := func(sector int) int { return (sector + 1) * cfbSectorSize }

	// FAT sectors.
	for i, entry := range fat {
		offset := sectorOffset(0) + i*4
		binary.LittleEndian.PutUint32(file[offset:offset+4], entry)
	}

	// Directory entries: root, then one per stream, sibling-chained.
	writeEntry := func(index int, name string, objectType byte, rightSibling, child, start uint32, size uint64) {
		offset := sectorOffset(firstDirectorySector) + index*128
		entry := file[offset : offset+128]
		codeUnits := utf16.Encode([]rune(name))
		for i, unit := range codeUnits {
			binary.LittleEndian.PutUint16(entry[i*2:i*2+2], unit)
		}
		binary.LittleEndian.PutUint16(entry[64:66], uint16(len(codeUnits)*2+2))
		entry[66] = objectType
		entry[67] = 1 // black
		binary.LittleEndian.PutUint32(entry[68:72], cfbNoStream) // left sibling
		binary.LittleEndian.PutUint32(entry[72:76], rightSibling)
		binary.LittleEndian.PutUint32(entry[76:80], child)
		binary.LittleEndian.PutUint32(entry[116:120], start)
		binary.LittleEndian.PutUint64(entry[120:128], size)
	}

	rootChild := uint32(cfbNoStream)
	if len(streams) > 0 {
		rootChild = 1
	}
	writeEntry(0, "Root Entry", 5, cfbNoStream, rootChild, cfbEndOfChain, 0)
	for i, stream := range streams {
		rightSibling := uint32(cfbNoStream)
		if i+1 < len(streams) {
			rightSibling = uint32(i + 2)
		}
		writeEntry(i+1, stream.Name, 2, rightSibling, cfbNoStream,
			streamStart[i], uint64(len(stream.Data)))
	}

	// Stream data.
	for i, stream := range streams {
		if dataSectors[i] == 0 {
			continue
		}
		copy(file[sectorOffset(int(streamStart[i])):], stream.Data)
	}

	if err := os.WriteFile(path, file, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
