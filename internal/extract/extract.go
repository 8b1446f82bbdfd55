// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls the text layer out of PDF files through a set of
// pluggable backends. Backends differ in parsing strategy and in how well
// they survive the font-encoding damage common in Korean PDFs, so callers
// normally use Smart, which tries every available backend and keeps the
// best-scoring result.
package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhkim1009/pdftotext/internal/container"
	"github.com/jhkim1009/pdftotext/pkg/types"
)

// ErrNoBackends is returned when no extraction backend is operational.
var ErrNoBackends = errors.New("no PDF extraction backends available")

// Extractor pulls per-page text out of a PDF file.
type Extractor interface {
	// Name returns the backend identifier used in CLI flags and reports.
	Name() string

	// Available reports whether the backend can run in this environment.
	// Pure-Go backends always can; the poppler backend needs a container
	// runtime with the poppler image present.
	Available() bool

	// Extract reads the PDF at pdfPath and returns its pages in order.
	// Pages that contain no text are returned with empty Text so page
	// numbering stays aligned with the source document.
	Extract(ctx context.Context, pdfPath string) (*types.Document, error)
}

// Backends returns every registered extractor in Korean-preference order:
// layout reassembly first, raw content-stream scanning last. The poppler
// backend is probed lazily and dropped when no container runtime is up.
func Backends() []Extractor {
	return []Extractor{
		&layoutExtractor{},
		&pdfcpuExtractor{},
		&textLayerExtractor{},
		newPopplerExtractor(container.DetectRuntime),
		&rawScanExtractor{},
	}
}

// AvailableBackends filters Backends down to the ones that can run.
// An empty result means the environment cannot extract anything.
func AvailableBackends() ([]Extractor, error) {
	var avail []Extractor
	for _, b := range Backends() {
		if b.Available() {
			avail = append(avail, b)
		}
	}
	if len(avail) == 0 {
		return nil, ErrNoBackends
	}
	return avail, nil
}

// ByName returns the named backend, checking availability.
func ByName(name string) (Extractor, error) {
	for _, b := range Backends() {
		if b.Name() != name {
			continue
		}
		if !b.Available() {
			return nil, fmt.Errorf("backend %s is not available in this environment", name)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}
