// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildValidPDF writes a minimal but structurally complete single-page
// PDF (catalog, page tree, content stream, xref table) so the strict
// parsers accept it. Offsets are computed while writing.
func buildValidPDF(t *testing.T, content string) string {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "valid.pdf")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPdfcpuExtract(t *testing.T) {
	path := buildValidPDF(t, "BT\n/F1 12 Tf\n72 720 Td\n(Hello from page one) Tj\nET")

	e := &pdfcpuExtractor{}
	doc, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(doc.Pages))
	}
	if !strings.Contains(doc.Pages[0].Text, "Hello from page one") {
		t.Errorf("page text = %q, want the content stream text", doc.Pages[0].Text)
	}
	if doc.Backend != "pdfcpu" {
		t.Errorf("backend = %q, want pdfcpu", doc.Backend)
	}
}

func TestPdfcpuExtract_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.pdf")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := &pdfcpuExtractor{}
	if _, err := e.Extract(context.Background(), path); err == nil {
		t.Error("expected error for non-PDF input")
	}
}

func TestProbe(t *testing.T) {
	path := buildValidPDF(t, "BT (probe me) Tj ET")

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.PageCount != 1 {
		t.Errorf("page count = %d, want 1", info.PageCount)
	}
	if info.Encrypted {
		t.Error("plain file reported as encrypted")
	}
}

func TestSplitFormFeeds(t *testing.T) {
	pages := splitFormFeeds("one\ftwo\fthree")
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	if pages[1].Number != 2 || pages[1].Text != "two" {
		t.Errorf("page 2 = %+v", pages[1])
	}
}
