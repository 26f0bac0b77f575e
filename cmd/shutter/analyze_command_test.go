package main

import (
	"encoding/json"
	"testing"

	"shutter/internal/testsupport"
)

func TestAnalyzeCommandTableOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteFile(t, env.workDir, "photo.jpg", testsupport.JPEGBytes(t, 64, 48))

	out, _, err := runCLI(t, []string{"analyze", path}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "photo.jpg")
	requireContains(t, out, "Format: JPEG (JFIF)")
	requireContains(t, out, "Entropy:")
	requireContains(t, out, "SHA256:")
}

func TestAnalyzeCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteFile(t, env.workDir, "photo.png", testsupport.PNGBytes(t, 32, 32))

	out, _, err := runCLI(t, []string{"analyze", "--json", path}, env.configPath)
	if err != nil {
		t.Fatalf("analyze --json: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for _, key := range []string{"sources", "consolidated", "analysis"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("JSON output missing %q", key)
		}
	}
}

func TestAnalyzeCommandForensicJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteFile(t, env.workDir, "zeros.bin", testsupport.ZerosWithZIP(100, 40))

	out, _, err := runCLI(t, []string{"analyze", "--forensic", path}, env.configPath)
	if err != nil {
		t.Fatalf("analyze --forensic: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	requireContains(t, out, "zip_signature")
	requireContains(t, out, `"offset": 40`)
}

func TestAnalyzeCommandMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"analyze", "/no/such/file.jpg"}, env.configPath); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestAnalyzeCommandUsesCache(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteFile(t, env.workDir, "photo.jpg", testsupport.JPEGBytes(t, 16, 16))

	if _, _, err := runCLI(t, []string{"analyze", path}, env.configPath); err != nil {
		t.Fatalf("first analyze: %v", err)
	}

	out, _, err := runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "photo.jpg")
}
