// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package pkgcmp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// RPM v3 package reading: 96-byte lead, signature header (8-byte
// aligned), main header, compressed cpio payload. Header structure
// per rpmpgp/rpmtag documentation: magic, reserved, index count,
// store size, then count*16-byte index entries followed by the store.

var (
	rpmLeadMagic   = []byte{0xed, 0xab, 0xee, 0xdb}
	rpmHeaderMagic = []byte{0x8e, 0xad, 0xe8, 0x01}
)

const rpmLeadSize = 96

// Main-header tags this comparator reads.
const (
	rpmTagName              = 1000
	rpmTagVersion           = 1001
	rpmTagRelease           = 1002
	rpmTagArch              = 1022
	rpmTagRequireName       = 1049
	rpmTagRequireVersion    = 1050
	rpmTagPayloadCompressor = 1125
)

// rpmSummary is the comparison-relevant content of an RPM package.
// Build timestamps (BUILDTIME), the build host, the signature header,
// and COOKIE are deliberately absent: they change on every rebuild
// without changing what gets installed.
type rpmSummary struct {
	name     string
	version  string
	release  string
	arch     string
	requires []string
	payload  []member
}

// EqualRpm reports whether two RPM packages are content-equivalent:
// identical name, version, release, architecture, require list, and
// cpio payload (ordered member names and content).
func EqualRpm(pathA, pathB string) (bool, error) {
	summaryA, err := rpmPackageSummary(pathA)
	if err != nil {
		return false, err
	}
	summaryB, err := rpmPackageSummary(pathB)
	if err != nil {
		return false, err
	}

	if summaryA.name != summaryB.name ||
		summaryA.version != summaryB.version ||
		summaryA.release != summaryB.release ||
		summaryA.arch != summaryB.arch {
		return false, nil
	}
	if len(summaryA.requires) != len(summaryB.requires) {
		return false, nil
	}
	for i := range summaryA.requires {
		if summaryA.requires[i] != summaryB.requires[i] {
			return false, nil
		}
	}
	return membersEqual(summaryA.payload, summaryB.payload), nil
}

// rpmPackageSummary parses an .rpm file into its comparison summary.
func rpmPackageSummary(path string) (*rpmSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rpm %s: %w", path, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)

	lead := make([]byte, rpmLeadSize)
	if _, err := io.ReadFull(reader, lead); err != nil {
		return nil, fmt.Errorf("%s: reading lead: %w", path, err)
	}
	if !bytes.Equal(lead[0:4], rpmLeadMagic) {
		return nil, fmt.Errorf("%s: not an rpm package (lead magic %x)", path, lead[0:4])
	}

	// Signature header: parsed only to skip it (its size varies with
	// the signing key). The store is padded to 8 bytes before the
	// main header.
	signatureSize, _, err := rpmReadHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: signature header: %w", path, err)
	}
	if padding := (8 - signatureSize%8) % 8; padding > 0 {
		if _, err := io.CopyN(io.Discard, reader, int64(padding)); err != nil {
			return nil, fmt.Errorf("%s: signature padding: %w", path, err)
		}
	}

	_, tags, err := rpmReadHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: main header: %w", path, err)
	}

	summary := &rpmSummary{
		name:    tags.str(rpmTagName),
		version: tags.str(rpmTagVersion),
		release: tags.str(rpmTagRelease),
		arch:    tags.str(rpmTagArch),
	}

	requireNames := tags.strs(rpmTagRequireName)
	requireVersions := tags.strs(rpmTagRequireVersion)
	for i, name := range requireNames {
		version := ""
		if i < len(requireVersions) {
			version = requireVersions[i]
		}
		summary.requires = append(summary.requires, name+" "+version)
	}

	compressor := tags.str(rpmTagPayloadCompressor)
	if compressor == "" {
		compressor = "gzip"
	}
	decompressed, closeCodec, err := rpmDecompressPayload(reader, compressor)
	if err != nil {
		return nil, fmt.Errorf("%s: payload: %w", path, err)
	}
	defer closeCodec()

	payload, err := cpioManifest(decompressed)
	if err != nil {
		return nil, fmt.Errorf("%s: payload: %w", path, err)
	}
	summary.payload = payload
	return summary, nil
}

// rpmDecompressPayload wraps the payload stream with the decoder the
// header declares. gzip and zstd cover what rpmbuild emits on the
// distributions this tool packages for; anything else is an error.
func rpmDecompressPayload(r io.Reader, compressor string) (io.Reader, func(), error) {
	switch compressor {
	case "gzip", "zstd":
		return decompressStream(bufio.NewReader(r))
	default:
		return nil, nil, fmt.Errorf("payload compressor %q is not supported", compressor)
	}
}

// rpmTags maps tag number to raw index entry plus the header store.
type rpmTags struct {
	entries map[int]rpmIndexEntry
	store   []byte
}

type rpmIndexEntry struct {
	dataType uint32
	offset   uint32
	count    uint32
}

// RPM index entry data types used here.
const (
	rpmTypeString      = 6
	rpmTypeStringArray = 8
	rpmTypeI18NString  = 9
)

// rpmReadHeader reads one header structure (signature or main) and
// returns the store size and the parsed tag table.
func rpmReadHeader(r io.Reader) (int, *rpmTags, error) {
	fixed := make([]byte, 16)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return 0, nil, fmt.Errorf("reading header intro: %w", err)
	}
	if !bytes.Equal(fixed[0:4], rpmHeaderMagic) {
		return 0, nil, fmt.Errorf("bad header magic %x", fixed[0:4])
	}
	indexCount := binary.BigEndian.Uint32(fixed[8:12])
	storeSize := binary.BigEndian.Uint32(fixed[12:16])

	// Real headers hold a few hundred entries and a store of a few
	// hundred KB; bounding both keeps a corrupt count from wrapping
	// the allocation below or ballooning memory.
	if indexCount > 0xffff {
		return 0, nil, fmt.Errorf("corrupt header: %d index entries", indexCount)
	}
	if storeSize > 1<<28 {
		return 0, nil, fmt.Errorf("corrupt header: store size %d", storeSize)
	}

	index := make([]byte, int(indexCount)*16)
	if _, err := io.ReadFull(r, index); err != nil {
		return 0, nil, fmt.Errorf("reading header index: %w", err)
	}
	store := make([]byte, storeSize)
	if _, err := io.ReadFull(r, store); err != nil {
		return 0, nil, fmt.Errorf("reading header store: %w", err)
	}

	tags := &rpmTags{entries: make(map[int]rpmIndexEntry), store: store}
	for i := 0; i < int(indexCount); i++ {
		entry := index[i*16 : i*16+16]
		tag := int(binary.BigEndian.Uint32(entry[0:4]))
		tags.entries[tag] = rpmIndexEntry{
			dataType: binary.BigEndian.Uint32(entry[4:8]),
			offset:   binary.BigEndian.Uint32(entry[8:12]),
			count:    binary.BigEndian.Uint32(entry[12:16]),
		}
	}
	return int(storeSize), tags, nil
}

// str returns a single-string tag value, or "" when absent.
func (t *rpmTags) str(tag int) string {
	entry, ok := t.entries[tag]
	if !ok {
		return ""
	}
	if entry.dataType != rpmTypeString && entry.dataType != rpmTypeI18NString {
		return ""
	}
	return t.nulString(int(entry.offset))
}

// strs returns a string-array tag value, or nil when absent.
func (t *rpmTags) strs(tag int) []string {
	entry, ok := t.entries[tag]
	if !ok || entry.dataType != rpmTypeStringArray {
		return nil
	}
	values := make([]string, 0, entry.count)
	offset := int(entry.offset)
	for i := 0; i < int(entry.count); i++ {
		value := t.nulString(offset)
		values = append(values, value)
		offset += len(value) + 1
	}
	return values
}

func (t *rpmTags) nulString(offset int) string {
	if offset < 0 || offset >= len(t.store) {
		return ""
	}
	end := bytes.IndexByte(t.store[offset:], 0)
	if end < 0 {
		return string(t.store[offset:])
	}
	return string(t.store[offset : offset+end])
}
