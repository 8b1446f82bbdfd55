// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/jhkim1009/pdftotext/internal/httputil"
	"github.com/jhkim1009/pdftotext/pkg/types"
)

// TagRef extracts a release version from a git ref. Only version tags
// (v-prefixed) qualify; branch refs and other tags return ok=false.
func TagRef(ref string) (version string, ok bool) {
	tag := strings.TrimPrefix(ref, "refs/tags/")
	if tag == ref && strings.HasPrefix(ref, "refs/") {
		return "", false
	}
	if len(tag) < 2 || !strings.HasPrefix(tag, "v") {
		return "", false
	}
	return tag, true
}

// gitExecutor abstracts git invocation for testing.
type gitExecutor interface {
	Output(name string, args ...string) ([]byte, error)
}

type osGitExecutor struct{}

func (o *osGitExecutor) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

var defaultGitExec gitExecutor = &osGitExecutor{}

// HeadTag returns the tag pointing exactly at HEAD, or ok=false when HEAD
// is untagged.
func HeadTag() (tag string, ok bool) {
	return headTag(defaultGitExec)
}

func headTag(exec gitExecutor) (string, bool) {
	out, err := exec.Output("git", "describe", "--tags", "--exact-match")
	if err != nil {
		return "", false
	}
	tag := strings.TrimSpace(string(out))
	if tag == "" {
		return "", false
	}
	return tag, true
}

// Publisher creates GitHub releases and uploads the platform artifacts.
// A release either carries all artifacts or does not exist: any upload
// failure deletes the partially created release.
type Publisher struct {
	client     *http.Client
	cfg        types.DistConfig
	apiBase    string
	uploadBase string
}

// NewPublisher returns a Publisher for the configured repository.
func NewPublisher(client *http.Client, cfg types.DistConfig) *Publisher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Publisher{
		client:     client,
		cfg:        cfg,
		apiBase:    "https://api.github.com",
		uploadBase: "https://uploads.github.com",
	}
}

type releaseRequest struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Draft   bool   `json:"draft"`
}

type releaseResponse struct {
	ID int64 `json:"id"`
}

// Publish verifies the staged artifacts, creates a release for version,
// and uploads one asset per target. On any upload failure the release is
// deleted so no partial release is ever visible.
func (p *Publisher) Publish(ctx context.Context, version string, w io.Writer) error {
	if p.cfg.Token == "" {
		return fmt.Errorf("no release token configured (set GITHUB_TOKEN or .secrets/github-token)")
	}

	// Every artifact must be present before anything touches the API.
	paths, err := VerifyArtifacts(p.cfg.DistDir)
	if err != nil {
		return fmt.Errorf("verifying artifacts: %w", err)
	}

	releaseID, err := p.createRelease(ctx, version)
	if err != nil {
		return fmt.Errorf("creating release %s: %w", version, err)
	}
	fmt.Fprintf(w, "created release %s\n", version)

	targets := Targets()
	for i, t := range targets {
		if err := p.uploadAsset(ctx, releaseID, t.AssetName(version), paths[i]); err != nil {
			fmt.Fprintf(w, "upload failed for %s, rolling back release\n", t.Name)
			if delErr := p.deleteRelease(ctx, releaseID); delErr != nil {
				return fmt.Errorf("uploading %s asset: %w (rollback also failed: %v)", t.Name, err, delErr)
			}
			return fmt.Errorf("uploading %s asset: %w (release rolled back)", t.Name, err)
		}
		fmt.Fprintf(w, "uploaded %s\n", t.AssetName(version))
	}

	fmt.Fprintf(w, "release %s published with %d assets\n", version, len(targets))
	return nil
}

func (p *Publisher) createRelease(ctx context.Context, version string) (int64, error) {
	body, err := json.Marshal(releaseRequest{
		TagName: version,
		Name:    artifactBase + " " + version,
	})
	if err != nil {
		return 0, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases", p.apiBase, p.cfg.Owner, p.cfg.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	p.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, p.client, req, 0)
	if err != nil {
		return 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, apiError(resp)
	}

	var rel releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return 0, fmt.Errorf("parsing response: %w", err)
	}
	return rel.ID, nil
}

func (p *Publisher) uploadAsset(ctx context.Context, releaseID int64, assetName, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading artifact: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/%d/assets?name=%s",
		p.uploadBase, p.cfg.Owner, p.cfg.Repo, releaseID, assetName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	p.setHeaders(req)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := httputil.DoWithRetry(ctx, p.client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return apiError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (p *Publisher) deleteRelease(ctx context.Context, releaseID int64) error {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/%d", p.apiBase, p.cfg.Owner, p.cfg.Repo, releaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

func (p *Publisher) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("GitHub API returned HTTP %d", resp.StatusCode)
	}
	return fmt.Errorf("GitHub API returned HTTP %d: %s", resp.StatusCode, msg)
}
