// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/distforge/distforge/lib/buildtool"
)

// sourceVerify proves the published source bundle builds as shipped:
// it unpacks the tarball into a scratch directory and drives
// configure, make, and the check suite against the extracted tree.
// With sudo available the built tree is also installed.
func sourceVerify(env BuildEnvironment) func(context.Context, string) error {
	return func(ctx context.Context, artifactPath string) error {
		scratch, err := os.MkdirTemp("", "distforge-srccheck-*")
		if err != nil {
			return fmt.Errorf("creating verification directory: %w", err)
		}
		defer os.RemoveAll(scratch)

		root, err := extractTarGz(artifactPath, scratch)
		if err != nil {
			return fmt.Errorf("unpacking %s: %w", filepath.Base(artifactPath), err)
		}

		tools := buildtool.NewAutotools(root)
		if _, err := tools.Configure(ctx); err != nil {
			return err
		}
		if _, err := tools.Make(ctx); err != nil {
			return err
		}
		if _, err := tools.Make(ctx, "check"); err != nil {
			return err
		}
		if env.Sudo != nil {
			if _, err := env.Sudo.Run(ctx, root, "make", "install"); err != nil {
				return err
			}
		}
		return nil
	}
}

// extractTarGz unpacks a gzip-compressed tarball into dir and returns
// the single top-level directory its members share ("make dist"
// tarballs always have one). Member modes are preserved so the
// configure script stays executable.
func extractTarGz(archive, dir string) (string, error) {
	file, err := os.Open(archive)
	if err != nil {
		return "", err
	}
	defer file.Close()

	decompressed, err := gzip.NewReader(file)
	if err != nil {
		return "", err
	}
	defer decompressed.Close()

	reader := tar.NewReader(decompressed)
	root := ""
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		name := path.Clean(header.Name)
		if name == "." {
			continue
		}
		if path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
			return "", fmt.Errorf("member %q escapes the extraction root", header.Name)
		}

		top, _, _ := strings.Cut(name, "/")
		if root == "" {
			root = top
		} else if top != root {
			return "", fmt.Errorf("members span multiple top-level directories (%q, %q)", root, top)
		}

		target := filepath.Join(dir, filepath.FromSlash(name))
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)&0o777|0o700); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return "", err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode)&0o777)
			if err != nil {
				return "", err
			}
			_, err = io.Copy(out, reader)
			if closeErr := out.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return "", fmt.Errorf("writing %s: %w", name, err)
			}
		case tar.TypeSymlink:
			if err := os.Symlink(header.Linkname, target); err != nil {
				return "", err
			}
		}
	}

	if root == "" {
		return "", errors.New("empty archive")
	}
	return filepath.Join(dir, root), nil
}
