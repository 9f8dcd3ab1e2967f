// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"testing"
)

// RpmSpec describes a synthetic RPM package fixture.
type RpmSpec struct {
	Name    string
	Version string
	Release string
	Arch    string

	// Requires is the dependency list as (name, version) pairs.
	Requires [][2]string

	// BuildTime varies per-build metadata without changing content.
	BuildTime uint32

	// Compressor selects the payload compression: "gzip" (default)
	// or "zstd".
	Compressor string

	// Files is the cpio payload.
	Files []File
}

// RPM tag and type constants used by the fixture writer.
const (
	rpmTagName              = 1000
	rpmTagVersion           = 1001
	rpmTagRelease           = 1002
	rpmTagBuildTime         = 1006
	rpmTagArch              = 1022
	rpmTagRequireName       = 1049
	rpmTagRequireVersion    = 1050
	rpmTagPayloadFormat     = 1124
	rpmTagPayloadCompressor = 1125

	rpmTypeInt32       = 4
	rpmTypeString      = 6
	rpmTypeStringArray = 8
)

// WriteRpm writes a minimal but structurally valid .rpm at path:
// lead, empty signature header, main header with the tags the
// comparator reads, and a compressed newc cpio payload.
func WriteRpm(t testing.TB, path string, spec RpmSpec) {
	t.Helper()

	compressor := spec.Compressor
	if compressor == "" {
		compressor = "gzip"
	}

	var payload bytes.Buffer
	cpioWriter, closeCodec := compressWriter(t, &payload, compressor)
	writeCpio(t, cpioWriter, spec.Files)
	closeCodec()

	header := newRpmHeader()
	header.addString(rpmTagName, spec.Name)
	header.addString(rpmTagVersion, spec.Version)
	header.addString(rpmTagRelease, spec.Release)
	header.addInt32(rpmTagBuildTime, spec.BuildTime)
	header.addString(rpmTagArch, spec.Arch)
	if len(spec.Requires) > 0 {
		names := make([]string, len(spec.Requires))
		versions := make([]string, len(spec.Requires))
		for i, require := range spec.Requires {
			names[i] = require[0]
			versions[i] = require[1]
		}
		header.addStringArray(rpmTagRequireName, names)
		header.addStringArray(rpmTagRequireVersion, versions)
	}
	header.addString(rpmTagPayloadFormat, "cpio")
	header.addString(rpmTagPayloadCompressor, compressor)

	var out bytes.Buffer

	// Lead: magic, version 3.0, type 0 (binary), arch, name,
	// osnum/signature type, reserved padding to 96 bytes.
	lead := make([]byte, 96)
	copy(lead, []byte{0xed, 0xab, 0xee, 0xdb, 3, 0, 0, 0})
	copy(lead[10:], spec.Name)
	out.Write(lead)

	// Empty signature header: no index entries, no store, and
	// nothing to pad.
	out.Write([]byte{0x8e, 0xad, 0xe8, 0x01, 0, 0, 0, 0})
	out.Write(make([]byte, 8))

	out.Write(header.bytes())
	out.Write(payload.Bytes())

	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// rpmHeaderBuilder accumulates index entries and their store bytes.
type rpmHeaderBuilder struct {
	index []rpmHeaderEntry
	store bytes.Buffer
}

type rpmHeaderEntry struct {
	tag      uint32
	dataType uint32
	offset   uint32
	count    uint32
}

func newRpmHeader() *rpmHeaderBuilder {
	return &rpmHeaderBuilder{}
}

func (h *rpmHeaderBuilder) addString(tag int, value string) {
	h.index = append(h.index, rpmHeaderEntry{
		tag: uint32(tag), dataType: rpmTypeString,
		offset: uint32(h.store.Len()), count: 1,
	})
	h.store.WriteString(value)
	h.store.WriteByte(0)
}

func (h *rpmHeaderBuilder) addStringArray(tag int, values []string) {
	h.index = append(h.index, rpmHeaderEntry{
		tag: uint32(tag), dataType: rpmTypeStringArray,
		offset: uint32(h.store.Len()), count: uint32(len(values)),
	})
	for _, value := range values {
		h.store.WriteString(value)
		h.store.WriteByte(0)
	}
}

func (h *rpmHeaderBuilder) addInt32(tag int, value uint32) {
	// int32 store data is 4-byte aligned.
	for h.store.Len()%4 != 0 {
		h.store.WriteByte(0)
	}
	h.index = append(h.index, rpmHeaderEntry{
		tag: uint32(tag), dataType: rpmTypeInt32,
		offset: uint32(h.store.Len()), count: 1,
	})
	binary.Write(&h.store, binary.BigEndian, value)
}

func (h *rpmHeaderBuilder) bytes() []byte {
	var out bytes.Buffer
	out.Write([]byte{0x8e, 0xad, 0xe8, 0x01, 0, 0, 0, 0})
	binary.Write(&out, binary.BigEndian, uint32(len(h.index)))
	binary.Write(&out, binary.BigEndian, uint32(h.store.Len()))
	for _, entry := range h.index {
		binary.Write(&out, binary.BigEndian, entry.tag)
		binary.Write(&out, binary.BigEndian, entry.dataType)
		binary.Write(&out, binary.BigEndian, entry.offset)
		binary.Write(&out, binary.BigEndian, entry.count)
	}
	out.Write(h.store.Bytes())
	return out.Bytes()
}

// writeCpio writes a newc cpio stream with the given regular-file
// members and the trailer record.
func writeCpio(t testing.TB, w io.Writer, files []File) {
	t.Helper()

	inode := 1
	for _, file := range files {
		writeCpioRecord(t, w, file.Name, []byte(file.Data), inode)
		inode++
	}
	writeCpioRecord(t, w, "TRAILER!!!", nil, 0)
}

func writeCpioRecord(t testing.TB, w io.Writer, name string, data []byte, inode int) {
	t.Helper()

	// Fields: ino, mode, uid, gid, nlink, mtime, filesize, dev and
	// rdev major/minor, namesize, check.
	header := fmt.Sprintf("070701%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x",
		inode, 0o100644, 0, 0, 1, 0, len(data), 0, 0, 0, 0, len(name)+1, 0)
	record := []byte(header)
	record = append(record, name...)
	record = append(record, 0)
	for len(record)%4 != 0 {
		record = append(record, 0)
	}
	record = append(record, data...)
	for len(record)%4 != 0 {
		record = append(record, 0)
	}
	if _, err := w.Write(record); err != nil {
		t.Fatalf("writing cpio record %s: %v", name, err)
	}
}
