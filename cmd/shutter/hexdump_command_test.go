package main

import (
	"strings"
	"testing"

	"shutter/internal/testsupport"
)

func TestHexdumpCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteFile(t, env.workDir, "data.bin",
		[]byte("Hello, hexdump! This line spans more than one row."))

	out, _, err := runCLI(t, []string{"hexdump", path}, env.configPath)
	if err != nil {
		t.Fatalf("hexdump: %v", err)
	}
	requireContains(t, out, "00000000")
	requireContains(t, out, "48 65 6C 6C 6F")
	requireContains(t, out, "Hello, hexdump! ")
}

func TestHexdumpCommandOffsetAndLimit(t *testing.T) {
	env := setupCLITestEnv(t)
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = byte(i)
	}
	path := testsupport.WriteFile(t, env.workDir, "data.bin", buf)

	out, _, err := runCLI(t, []string{"hexdump", "--offset", "16", "--limit", "16", path}, env.configPath)
	if err != nil {
		t.Fatalf("hexdump: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("row count: got %d, want 1", len(lines))
	}
	requireContains(t, out, "00000010")
}

func TestHexdumpCommandOffsetPastEnd(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteFile(t, env.workDir, "tiny.bin", []byte{1, 2, 3})

	if _, _, err := runCLI(t, []string{"hexdump", "--offset", "10", path}, env.configPath); err == nil {
		t.Fatal("expected error for offset past end of file")
	}
}
