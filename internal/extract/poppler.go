// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jhkim1009/pdftotext/internal/container"
	"github.com/jhkim1009/pdftotext/pkg/types"
)

const imagePoppler = "poppler:latest"

// popplerExtractor pipes the PDF through a containerized poppler
// pdftotext. Available only when a container runtime is up and the
// poppler image is present locally.
type popplerExtractor struct {
	detect func() (container.Runtime, error)

	once      sync.Once
	rt        container.Runtime
	detectErr error
}

func newPopplerExtractor(detect func() (container.Runtime, error)) *popplerExtractor {
	return &popplerExtractor{detect: detect}
}

func (e *popplerExtractor) Name() string { return string(types.ModePoppler) }

// runtime resolves the container runtime once; detection shells out to
// docker/podman and is not free.
func (e *popplerExtractor) runtime() (container.Runtime, error) {
	e.once.Do(func() {
		rt, err := e.detect()
		if err != nil {
			e.detectErr = err
			return
		}
		if err := rt.ImageExists(imagePoppler); err != nil {
			e.detectErr = err
			return
		}
		e.rt = rt
	})
	return e.rt, e.detectErr
}

func (e *popplerExtractor) Available() bool {
	_, err := e.runtime()
	return err == nil
}

func (e *popplerExtractor) Extract(ctx context.Context, pdfPath string) (*types.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rt, err := e.runtime()
	if err != nil {
		return nil, fmt.Errorf("poppler backend unavailable: %w", err)
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	args := []string{"pdftotext", "-enc", "UTF-8", "-", "-"}
	if err := rt.Run(imagePoppler, args, f, &out); err != nil {
		return nil, fmt.Errorf("converting %s with poppler: %w", pdfPath, err)
	}

	return &types.Document{
		SourcePDF: pdfPath,
		Backend:   e.Name(),
		Pages:     splitFormFeeds(out.String()),
	}, nil
}
