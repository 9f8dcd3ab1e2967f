// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package buildtool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// stubTool installs a fake executable on PATH that records its working
// directory and arguments, one invocation per line, into a log file.
// Returns the log path.
func stubTool(t *testing.T, binDir, name string) string {
	t.Helper()
	logPath := filepath.Join(binDir, name+".log")
	script := fmt.Sprintf("#!/bin/sh\necho \"$(pwd)|$*\" >> %q\n", logPath)
	if err := os.WriteFile(filepath.Join(binDir, name), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return logPath
}

func invocations(t *testing.T, logPath string) []string {
	t.Helper()
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading tool log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestCMake(t *testing.T) {
	binDir := t.TempDir()
	cmakeLog := stubTool(t, binDir, "cmake")
	cpackLog := stubTool(t, binDir, "cpack")
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	sourceDir := t.TempDir()
	buildDir := filepath.Join(sourceDir, "build")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cmake := NewCMake(sourceDir, buildDir)
	ctx := context.Background()

	if _, err := cmake.Configure(ctx, map[string]string{
		"CMAKE_BUILD_TYPE": "Release",
		"BUILD_SHARED_LIB": "ON",
	}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if _, err := cmake.Build(ctx, "Release"); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := cmake.CPack(ctx, "DEB", "Release"); err != nil {
		t.Fatalf("CPack failed: %v", err)
	}

	cmakeCalls := invocations(t, cmakeLog)
	if len(cmakeCalls) != 2 {
		t.Fatalf("cmake invoked %d times, want 2", len(cmakeCalls))
	}
	// Defines appear sorted, so the command line is deterministic.
	wantConfigure := fmt.Sprintf("-S %s -B %s -DBUILD_SHARED_LIB=ON -DCMAKE_BUILD_TYPE=Release",
		sourceDir, buildDir)
	if !strings.HasSuffix(cmakeCalls[0], wantConfigure) {
		t.Errorf("configure args = %q, want suffix %q", cmakeCalls[0], wantConfigure)
	}
	if !strings.HasSuffix(cmakeCalls[1], fmt.Sprintf("--build %s --config Release", buildDir)) {
		t.Errorf("build args = %q", cmakeCalls[1])
	}

	cpackCalls := invocations(t, cpackLog)
	if len(cpackCalls) != 1 {
		t.Fatalf("cpack invoked %d times, want 1", len(cpackCalls))
	}
	// CPack must run from the build directory.
	resolvedBuildDir, err := filepath.EvalSymlinks(buildDir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(cpackCalls[0], resolvedBuildDir+"|") {
		t.Errorf("cpack ran in %q, want %q", cpackCalls[0], resolvedBuildDir)
	}
	if !strings.HasSuffix(cpackCalls[0], "-G DEB -C Release") {
		t.Errorf("cpack args = %q", cpackCalls[0])
	}
}

func TestAutotools(t *testing.T) {
	binDir := t.TempDir()
	autoreconfLog := stubTool(t, binDir, "autoreconf")
	makeLog := stubTool(t, binDir, "make")
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	sourceDir := t.TempDir()
	configureLog := stubTool(t, sourceDir, "configure")

	tools := NewAutotools(sourceDir)
	ctx := context.Background()

	if _, err := tools.Autoreconf(ctx); err != nil {
		t.Fatalf("Autoreconf failed: %v", err)
	}
	if _, err := tools.Configure(ctx, "--prefix=/usr"); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if _, err := tools.MakeDist(ctx); err != nil {
		t.Fatalf("MakeDist failed: %v", err)
	}

	if calls := invocations(t, autoreconfLog); !strings.HasSuffix(calls[0], "--install") {
		t.Errorf("autoreconf args = %q", calls[0])
	}
	if calls := invocations(t, configureLog); !strings.HasSuffix(calls[0], "--prefix=/usr") {
		t.Errorf("configure args = %q", calls[0])
	}
	if calls := invocations(t, makeLog); !strings.HasSuffix(calls[0], "dist") {
		t.Errorf("make args = %q", calls[0])
	}
}

func TestRunReportsStderr(t *testing.T) {
	binDir := t.TempDir()
	script := "#!/bin/sh\necho 'no rule to make target' >&2\nexit 2\n"
	if err := os.WriteFile(filepath.Join(binDir, "make"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	_, err := NewAutotools(t.TempDir()).Make(context.Background(), "dist")
	if err == nil {
		t.Fatal("expected error from failing make")
	}
	if !strings.Contains(err.Error(), "no rule to make target") {
		t.Errorf("error %q must include stderr output", err)
	}
}

func TestInstalled(t *testing.T) {
	if !Installed("sh") {
		t.Error("sh should be on PATH")
	}
	if Installed("definitely-not-a-real-tool-name") {
		t.Error("nonexistent tool reported as installed")
	}
}
