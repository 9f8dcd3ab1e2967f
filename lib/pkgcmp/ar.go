// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package pkgcmp

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Unix ar(5) container reading. Debian packages are ar archives
// holding debian-binary, control.tar.*, and data.tar.*. Only the
// common (BSD/System V shared) fixed-width header layout is needed;
// dpkg never emits long-name extensions.

const arGlobalHeader = "!<arch>\n"

// arEntry is one member of an ar archive. Data is valid until the
// next call to arReader.Next.
type arEntry struct {
	Name string
	Size int64
	Data io.Reader
}

type arReader struct {
	r       io.Reader
	current io.Reader // remaining data (plus padding) of the current entry
}

// newArReader validates the global ar header and returns a reader.
func newArReader(r io.Reader) (*arReader, error) {
	magic := make([]byte, len(arGlobalHeader))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("reading ar magic: %w", err)
	}
	if string(magic) != arGlobalHeader {
		return nil, fmt.Errorf("not an ar archive (magic %q)", magic)
	}
	return &arReader{r: r}, nil
}

// Next advances to the next archive member. Returns io.EOF at the end
// of the archive.
func (a *arReader) Next() (*arEntry, error) {
	// Skip any unconsumed remainder of the previous entry.
	if a.current != nil {
		if _, err := io.Copy(io.Discard, a.current); err != nil {
			return nil, fmt.Errorf("skipping previous ar entry: %w", err)
		}
		a.current = nil
	}

	header := make([]byte, 60)
	if _, err := io.ReadFull(a.r, header); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading ar member header: %w", err)
	}
	if header[58] != 0x60 || header[59] != 0x0a {
		return nil, fmt.Errorf("corrupt ar member header (bad terminator)")
	}

	name := strings.TrimRight(string(header[0:16]), " ")
	// dpkg may emit System V style names with a trailing slash.
	name = strings.TrimSuffix(name, "/")

	size, err := strconv.ParseInt(strings.TrimSpace(string(header[48:58])), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt ar member size for %q: %w", name, err)
	}

	// Member data is padded to an even offset with a single newline.
	padded := size + size%2
	a.current = io.LimitReader(a.r, padded)

	return &arEntry{
		Name: name,
		Size: size,
		Data: io.LimitReader(a.current, size),
	}, nil
}
