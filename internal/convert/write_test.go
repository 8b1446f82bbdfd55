// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteText_UTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	enc, err := WriteText(path, "한글 텍스트 문서")
	if err != nil {
		t.Fatal(err)
	}
	if enc != "utf-8" {
		t.Errorf("encoding = %q, want utf-8", enc)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "한글 텍스트 문서" {
		t.Errorf("round trip mismatch: %q", data)
	}
}

func TestWriteText_InvalidUTF8FallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	enc, err := WriteText(path, "broken \xff\xfe bytes")
	if err != nil {
		t.Fatal(err)
	}
	if enc == "utf-8" {
		t.Error("invalid UTF-8 should not be reported as utf-8")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "broken ") || !strings.Contains(content, " bytes") {
		t.Errorf("ASCII portions should survive the fallback: %q", content)
	}
}

func TestWriteText_NoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	if _, err := WriteText(path, "본문"); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "out.txt" {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}

func TestAsciiReplace(t *testing.T) {
	got := string(asciiReplace("ab한c"))
	if !strings.HasPrefix(got, "ab") || !strings.HasSuffix(got, "c") {
		t.Fatalf("ASCII bytes should pass through: %q", got)
	}
	if !strings.Contains(got, "?") {
		t.Errorf("non-ASCII bytes should become '?': %q", got)
	}
}
