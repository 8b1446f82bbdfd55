package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/jhkim1009/pdftotext/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := types.IndexConfig{
		IndexDir:   filepath.Join(tmpDir, "index"),
		MaxResults: 20,
	}
	s, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	return s, tmpDir
}

func sampleResult(id string, at time.Time) types.FileResult {
	return types.FileResult{
		ID:          id,
		SourcePDF:   "/pdfs/" + id + ".pdf",
		OutputPath:  "/out/" + id + ".txt",
		Status:      types.StatusRecovered,
		Backend:     "textlayer",
		Score:       92.5,
		Chars:       1200,
		HangulChars: 800,
		Encoding:    "utf-8",
		ConvertedAt: at,
	}
}

func TestRecordAndHistory(t *testing.T) {
	s, _ := testSetup(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		res := sampleResult(id, base.Add(time.Duration(i)*time.Hour))
		if err := s.Record(ctx, res, "한글 본문 "+id); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.History(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("history returned %d results, want 3", len(got))
	}
	if got[0].ID != "new" || got[2].ID != "old" {
		t.Errorf("history order = [%s %s %s], want newest first", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].Backend != "textlayer" || got[0].Score != 92.5 {
		t.Errorf("round trip lost fields: %+v", got[0])
	}
	if !got[0].ConvertedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("converted_at = %v, want %v", got[0].ConvertedAt, base.Add(2*time.Hour))
	}
}

func TestRecord_UpsertReplaces(t *testing.T) {
	s, _ := testSetup(t)
	ctx := context.Background()

	res := sampleResult("doc", time.Now().UTC())
	if err := s.Record(ctx, res, "first version"); err != nil {
		t.Fatal(err)
	}

	res.Backend = "pdfcpu"
	res.Score = 50
	if err := s.Record(ctx, res, "second version"); err != nil {
		t.Fatal(err)
	}

	got, err := s.History(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row after upsert, got %d", len(got))
	}
	if got[0].Backend != "pdfcpu" {
		t.Errorf("backend = %q, want pdfcpu", got[0].Backend)
	}

	// The FTS index must follow the update.
	hits, err := s.Search(ctx, QueryOptions{Query: "second"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("search for updated content returned %d hits, want 1", len(hits))
	}
	stale, err := s.Search(ctx, QueryOptions{Query: "first"})
	if err != nil {
		t.Fatal(err)
	}
	if len(stale) != 0 {
		t.Errorf("search for replaced content returned %d hits, want 0", len(stale))
	}
}

func TestSearch_FullText(t *testing.T) {
	s, _ := testSetup(t)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := s.Record(ctx, sampleResult("korean", now), "연차 보고서의 주요 내용입니다"); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, sampleResult("english", now), "quarterly revenue figures"); err != nil {
		t.Fatal(err)
	}

	hits, err := s.Search(ctx, QueryOptions{Query: "보고서의"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].ID != "korean" {
		t.Errorf("hit = %q, want korean", hits[0].ID)
	}
	if !strings.Contains(hits[0].Snippet, "[보고서의]") {
		t.Errorf("snippet %q should highlight the match", hits[0].Snippet)
	}
}

func TestSearch_Filters(t *testing.T) {
	s, _ := testSetup(t)
	ctx := context.Background()

	now := time.Now().UTC()
	a := sampleResult("a", now)
	a.Backend = "textlayer"
	b := sampleResult("b", now)
	b.Backend = "pdfcpu"
	c := sampleResult("c", now)
	c.Status = types.StatusFailed
	c.Backend = "pdfcpu"

	for _, res := range []types.FileResult{a, b, c} {
		if err := s.Record(ctx, res, "shared content"); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := s.Search(ctx, QueryOptions{Query: "shared", Backend: "pdfcpu"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("backend filter returned %d hits, want 2", len(hits))
	}

	hits, err = s.Search(ctx, QueryOptions{Backend: "pdfcpu", Status: types.StatusFailed})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "c" {
		t.Fatalf("combined filters returned %v, want just c", hits)
	}
}

func TestSearch_MaxResults(t *testing.T) {
	s, _ := testSetup(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := s.Record(ctx, sampleResult(fmt.Sprintf("doc%d", i), now), "common text"); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := s.Search(ctx, QueryOptions{Query: "common", MaxResults: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2", len(hits))
	}
}

func TestRecordBatch(t *testing.T) {
	s, tmpDir := testSetup(t)
	ctx := context.Background()

	outPath := filepath.Join(tmpDir, "a.txt")
	if err := os.WriteFile(outPath, []byte("배치 색인 본문"), 0o644); err != nil {
		t.Fatal(err)
	}

	ok := sampleResult("a", time.Now().UTC())
	ok.OutputPath = outPath
	skipped := sampleResult("b", time.Now().UTC())
	skipped.Status = types.StatusSkipped
	failed := sampleResult("c", time.Now().UTC())
	failed.Status = types.StatusFailed
	failed.OutputPath = ""
	failed.Error = "bad xref"

	var report types.BatchReport
	report.Add(ok)
	report.Add(skipped)
	report.Add(failed)

	var log bytes.Buffer
	if err := s.RecordBatch(ctx, report, &log); err != nil {
		t.Fatal(err)
	}

	all, err := s.History(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Skipped results are not recorded.
	if len(all) != 2 {
		t.Fatalf("recorded %d rows, want 2", len(all))
	}

	hits, err := s.Search(ctx, QueryOptions{Query: "색인"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "a" {
		t.Fatalf("content search returned %v, want just a", hits)
	}
}

func TestExport(t *testing.T) {
	s, tmpDir := testSetup(t)
	ctx := context.Background()

	if err := s.Record(ctx, sampleResult("doc", time.Now().UTC()), "export target"); err != nil {
		t.Fatal(err)
	}

	if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := s.ExportJSON(ctx, QueryOptions{}); err != nil {
		t.Fatal(err)
	}

	yamlData, err := os.ReadFile(filepath.Join(tmpDir, "index", "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML []types.FileResult
	if err := yaml.Unmarshal(yamlData, &fromYAML); err != nil {
		t.Fatal(err)
	}
	if len(fromYAML) != 1 || fromYAML[0].ID != "doc" {
		t.Errorf("YAML export = %v, want one doc entry", fromYAML)
	}

	jsonData, err := os.ReadFile(filepath.Join(tmpDir, "index", "export.json"))
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON []types.FileResult
	if err := json.Unmarshal(jsonData, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if len(fromJSON) != 1 || fromJSON[0].ID != "doc" {
		t.Errorf("JSON export = %v, want one doc entry", fromJSON)
	}
}
