// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package compare

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/distforge/distforge/cmd/distforge/cli"
	"github.com/distforge/distforge/lib/testutil"
)

func TestRunCompare(t *testing.T) {
	dir := t.TempDir()
	timeA := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	timeB := time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC)

	pathA := filepath.Join(dir, "app-1.0.0.zip")
	pathB := filepath.Join(dir, "app-1.0.0-rebuild.zip")
	pathC := filepath.Join(dir, "app-1.0.1.zip")
	testutil.WriteZip(t, pathA, testutil.ZipOptions{ModTime: timeA}, testutil.File{Name: "a.txt", Data: "x"})
	testutil.WriteZip(t, pathB, testutil.ZipOptions{ModTime: timeB}, testutil.File{Name: "a.txt", Data: "x"})
	testutil.WriteZip(t, pathC, testutil.ZipOptions{ModTime: timeA}, testutil.File{Name: "a.txt", Data: "y"})

	if err := runCompare(pathA, pathB, ""); err != nil {
		t.Errorf("equivalent rebuilds must compare clean: %v", err)
	}

	err := runCompare(pathA, pathC, "")
	var exitError *cli.ExitError
	if !errors.As(err, &exitError) || exitError.Code != 1 {
		t.Errorf("different artifacts must exit 1, got %v", err)
	}

	if err := runCompare(pathA, pathB, "cab"); err == nil {
		t.Error("unknown format name must fail")
	}
}
