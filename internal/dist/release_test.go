// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jhkim1009/pdftotext/pkg/types"
)

func TestTagRef(t *testing.T) {
	tests := []struct {
		name        string
		ref         string
		wantVersion string
		wantOK      bool
	}{
		{"version tag ref", "refs/tags/v1.0.0", "v1.0.0", true},
		{"bare version tag", "v2.1.3", "v2.1.3", true},
		{"non-version tag", "refs/tags/nightly", "", false},
		{"branch ref", "refs/heads/main", "", false},
		{"branch named v-something", "refs/heads/v1-fixes", "", false},
		{"just v", "refs/tags/v", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, ok := TagRef(tt.ref)
			if ok != tt.wantOK {
				t.Fatalf("TagRef(%q) ok = %v, want %v", tt.ref, ok, tt.wantOK)
			}
			if version != tt.wantVersion {
				t.Errorf("TagRef(%q) = %q, want %q", tt.ref, version, tt.wantVersion)
			}
		})
	}
}

// fakeGitExecutor returns canned git output.
type fakeGitExecutor struct {
	out []byte
	err error
}

func (f *fakeGitExecutor) Output(name string, args ...string) ([]byte, error) {
	return f.out, f.err
}

func TestHeadTag(t *testing.T) {
	tag, ok := headTag(&fakeGitExecutor{out: []byte("v1.0.0\n")})
	if !ok || tag != "v1.0.0" {
		t.Errorf("headTag = %q, %v; want v1.0.0, true", tag, ok)
	}

	_, ok = headTag(&fakeGitExecutor{err: errors.New("fatal: no tag exactly matches")})
	if ok {
		t.Error("untagged HEAD should report ok=false")
	}
}

// stageArtifacts writes one fake binary per target under distDir.
func stageArtifacts(t *testing.T, distDir string) {
	t.Helper()
	for _, tgt := range Targets() {
		stage := filepath.Join(distDir, tgt.StageDir)
		if err := os.MkdirAll(stage, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(stage, tgt.Artifact), []byte(tgt.Name+" binary"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

// releaseServer fakes the GitHub create/upload/delete endpoints.
type releaseServer struct {
	t            *testing.T
	failUploadAt int // 1-based upload index to fail, 0 for never
	uploads      []string
	created      int
	deleted      int
}

func (rs *releaseServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/releases"):
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
				rs.t.Errorf("Authorization = %q", auth)
			}
			rs.created++
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id": 42}`)

		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/assets"):
			rs.uploads = append(rs.uploads, r.URL.Query().Get("name"))
			if rs.failUploadAt > 0 && len(rs.uploads) == rs.failUploadAt {
				http.Error(w, "upload exploded", http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{}`)

		case r.Method == http.MethodDelete:
			rs.deleted++
			w.WriteHeader(http.StatusNoContent)

		default:
			rs.t.Errorf("unexpected request: %s %s", r.Method, r.URL)
			http.NotFound(w, r)
		}
	}
}

func testPublisher(t *testing.T, srv *httptest.Server, distDir string) *Publisher {
	t.Helper()
	p := NewPublisher(srv.Client(), types.DistConfig{
		Owner:   "jhkim1009",
		Repo:    "pdftotext",
		DistDir: distDir,
		Token:   "test-token",
	})
	p.apiBase = srv.URL
	p.uploadBase = srv.URL
	return p
}

func TestPublish(t *testing.T) {
	distDir := t.TempDir()
	stageArtifacts(t, distDir)

	rs := &releaseServer{t: t}
	srv := httptest.NewServer(rs.handler())
	defer srv.Close()

	var log bytes.Buffer
	p := testPublisher(t, srv, distDir)
	if err := p.Publish(context.Background(), "v1.0.0", &log); err != nil {
		t.Fatal(err)
	}

	if rs.created != 1 {
		t.Errorf("created = %d, want 1", rs.created)
	}
	if len(rs.uploads) != 3 {
		t.Fatalf("uploads = %v, want 3 assets", rs.uploads)
	}
	wantAssets := []string{
		"PDFtoText-v1.0.0-windows-amd64.exe",
		"PDFtoText-v1.0.0-darwin-arm64",
		"PDFtoText-v1.0.0-linux-amd64",
	}
	for i, want := range wantAssets {
		if rs.uploads[i] != want {
			t.Errorf("upload[%d] = %q, want %q", i, rs.uploads[i], want)
		}
	}
	if rs.deleted != 0 {
		t.Errorf("deleted = %d, want 0", rs.deleted)
	}
	if !strings.Contains(log.String(), "release v1.0.0 published with 3 assets") {
		t.Errorf("log output %q missing publish line", log.String())
	}
}

func TestPublish_RollsBackOnUploadFailure(t *testing.T) {
	distDir := t.TempDir()
	stageArtifacts(t, distDir)

	rs := &releaseServer{t: t, failUploadAt: 2}
	srv := httptest.NewServer(rs.handler())
	defer srv.Close()

	var log bytes.Buffer
	p := testPublisher(t, srv, distDir)
	err := p.Publish(context.Background(), "v1.0.0", &log)
	if err == nil {
		t.Fatal("expected an error when an upload fails")
	}
	if !strings.Contains(err.Error(), "rolled back") {
		t.Errorf("error %v should mention the rollback", err)
	}
	if rs.deleted != 1 {
		t.Errorf("deleted = %d, want 1 (release must not survive a partial upload)", rs.deleted)
	}
}

func TestPublish_RefusesIncompleteArtifacts(t *testing.T) {
	distDir := t.TempDir()
	stageArtifacts(t, distDir)

	// Remove one artifact so the set is incomplete.
	win, err := TargetByName("windows")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(distDir, win.StageDir, win.Artifact)); err != nil {
		t.Fatal(err)
	}

	rs := &releaseServer{t: t}
	srv := httptest.NewServer(rs.handler())
	defer srv.Close()

	var log bytes.Buffer
	p := testPublisher(t, srv, distDir)
	if err := p.Publish(context.Background(), "v1.0.0", &log); err == nil {
		t.Fatal("expected an error for missing artifacts")
	}
	if rs.created != 0 {
		t.Errorf("created = %d, want 0 (no API calls before verification)", rs.created)
	}
}

func TestPublish_RequiresToken(t *testing.T) {
	p := NewPublisher(nil, types.DistConfig{Owner: "o", Repo: "r", DistDir: t.TempDir()})
	var log bytes.Buffer
	if err := p.Publish(context.Background(), "v1.0.0", &log); err == nil {
		t.Fatal("expected an error without a token")
	}
}
