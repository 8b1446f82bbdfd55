// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads PDFs from URLs into the working directory and
// records a metadata sidecar per download.
package fetch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/jhkim1009/pdftotext/internal/httputil"
	"github.com/jhkim1009/pdftotext/pkg/types"
)

const metadataDir = "metadata"

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Downloads  []*types.Download
}

// Total returns the total number of URLs processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchPDF downloads a single URL into cfg.DestDir and writes a YAML
// sidecar under metadata/. If the PDF already exists on disk the download
// is skipped. The skipped return value indicates whether it was.
func FetchPDF(ctx context.Context, client *http.Client, rawURL string, cfg types.FetchConfig, w io.Writer) (dl *types.Download, skipped bool, err error) {
	slug, err := Slug(rawURL)
	if err != nil {
		return nil, false, err
	}

	pdfPath := filepath.Join(cfg.DestDir, slug+".pdf")
	metaPath := filepath.Join(cfg.DestDir, metadataDir, slug+".yaml")

	if _, err := os.Stat(pdfPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
		d, readErr := readMetadata(metaPath)
		if readErr != nil {
			d = &types.Download{ID: slug, SourceURL: rawURL, PDFPath: pdfPath}
		}
		return d, true, nil
	}

	for _, dir := range []string{cfg.DestDir, filepath.Join(cfg.DestDir, metadataDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(w, "downloading: %s\n", slug)

	if err := downloadFile(ctx, client, rawURL, pdfPath, cfg); err != nil {
		return nil, false, fmt.Errorf("downloading %s: %w", slug, err)
	}

	d := &types.Download{
		ID:        slug,
		SourceURL: rawURL,
		PDFPath:   pdfPath,
		FetchedAt: time.Now().UTC(),
	}
	if err := writeMetadata(d, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}
	return d, false, nil
}

// FetchBatch processes multiple URLs, printing per-item status and
// returning a summary. It continues after individual failures and applies
// a delay between consecutive downloads.
func FetchBatch(ctx context.Context, client *http.Client, urls []string, cfg types.FetchConfig, w io.Writer) (BatchResult, error) {
	var result BatchResult
	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if i > 0 && cfg.DownloadDelay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(cfg.DownloadDelay):
			}
		}
		dl, wasSkipped, err := FetchPDF(ctx, client, u, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", u, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Downloads = append(result.Downloads, dl)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// Slug derives a filesystem-safe name from a PDF URL. The URL path
// basename is used when it yields something usable; otherwise a short
// hash of the URL stands in.
func Slug(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	base := path.Base(u.Path)
	base = strings.TrimSuffix(base, path.Ext(base))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-.")
	if slug == "" || slug == "/" {
		sum := sha256.Sum256([]byte(rawURL))
		slug = fmt.Sprintf("download-%x", sum[:6])
	}
	return slug, nil
}

// downloadFile fetches url to destPath using a temporary file so an
// interrupted download never leaves a partial PDF. Rate-limited responses
// are retried with backoff.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, cfg types.FetchConfig) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadURLList reads one URL per line from a file. Blank lines and lines
// starting with '#' are ignored.
func ReadURLList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading URL list: %w", err)
	}
	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, nil
}

// writeMetadata writes a Download record to a YAML sidecar.
func writeMetadata(d *types.Download, path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// readMetadata reads a Download record from a YAML sidecar.
func readMetadata(path string) (*types.Download, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d types.Download
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
