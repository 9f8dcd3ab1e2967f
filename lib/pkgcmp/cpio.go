// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package pkgcmp

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

// SVR4 "newc" cpio reading, the payload format rpmbuild emits. Each
// entry is a 110-byte ASCII-hex header, the NUL-terminated path, and
// the data, with header+name and data each padded to 4 bytes.

const (
	cpioNewcMagic    = "070701"
	cpioNewcCrcMagic = "070702"
	cpioTrailerName  = "TRAILER!!!"
	cpioHeaderLen    = 110
)

// cpioManifest walks a newc cpio stream and returns the ordered
// member list. Symlink targets travel in the entry data, so they are
// covered by the content digest; inode numbers, modes, owners, and
// mtimes are build metadata and are not read at all.
func cpioManifest(r io.Reader) ([]member, error) {
	var members []member
	for {
		header := make([]byte, cpioHeaderLen)
		if _, err := io.ReadFull(r, header); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("truncated cpio stream")
			}
			return nil, fmt.Errorf("reading cpio header: %w", err)
		}

		magic := string(header[0:6])
		if magic != cpioNewcMagic && magic != cpioNewcCrcMagic {
			return nil, fmt.Errorf("bad cpio magic %q", magic)
		}

		fileSize, err := cpioField(header, 7) // c_filesize
		if err != nil {
			return nil, err
		}
		nameSize, err := cpioField(header, 11) // c_namesize
		if err != nil {
			return nil, err
		}
		// c_namesize counts the NUL terminator, so it is at least 1;
		// PATH_MAX bounds any name rpmbuild emits.
		if nameSize < 1 || nameSize > 4096 {
			return nil, fmt.Errorf("corrupt cpio header: name size %d", nameSize)
		}

		// Name is NUL-terminated; header+name pads to 4 bytes.
		namePadded := pad4(cpioHeaderLen+nameSize) - cpioHeaderLen
		nameBuffer := make([]byte, namePadded)
		if _, err := io.ReadFull(r, nameBuffer); err != nil {
			return nil, fmt.Errorf("reading cpio name: %w", err)
		}
		name := string(nameBuffer[:nameSize-1])

		if name == cpioTrailerName {
			return members, nil
		}

		data := io.LimitReader(r, int64(fileSize))
		digest, err := digestReader(data)
		if err != nil {
			return nil, fmt.Errorf("cpio member %s: %w", name, err)
		}
		if padding := pad4(fileSize) - fileSize; padding > 0 {
			if _, err := io.CopyN(io.Discard, r, int64(padding)); err != nil {
				return nil, fmt.Errorf("cpio member %s padding: %w", name, err)
			}
		}

		members = append(members, member{Name: name, Digest: digest})
	}
}

// cpioField decodes the index-th 8-character ASCII-hex field after
// the 6-byte magic.
func cpioField(header []byte, index int) (int, error) {
	start := 6 + index*8
	value, err := strconv.ParseUint(string(header[start:start+8]), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("corrupt cpio header field %d: %w", index, err)
	}
	return int(value), nil
}

func pad4(n int) int {
	return (n + 3) &^ 3
}
