// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jhkim1009/pdftotext/pkg/types"
)

// pdfcpuExtractor extracts text through pdfcpu with relaxed validation,
// which tolerates structurally damaged files the stricter parsers reject.
// pdfcpu decodes and consolidates each page's content stream; the text
// operands are then pulled out by the same content-stream parser the raw
// scanner uses.
type pdfcpuExtractor struct{}

func (e *pdfcpuExtractor) Name() string { return string(types.ModePdfcpu) }

func (e *pdfcpuExtractor) Available() bool { return true }

func (e *pdfcpuExtractor) Extract(ctx context.Context, pdfPath string) (*types.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.Cmd = model.EXTRACTCONTENT

	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pdfPath, err)
	}

	doc := &types.Document{
		SourcePDF: pdfPath,
		Backend:   e.Name(),
	}
	for p := 1; p <= pdfCtx.PageCount; p++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		r, err := pdfcpu.ExtractPageContent(pdfCtx, p)
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", p, pdfPath, err)
		}
		var text string
		if r != nil {
			stream, err := io.ReadAll(r)
			if err != nil {
				return nil, fmt.Errorf("page %d of %s: %w", p, pdfPath, err)
			}
			text = parseContentStream(stream, nil)
		}
		doc.Pages = append(doc.Pages, types.Page{Number: p, Text: text})
	}
	return doc, nil
}

// splitFormFeeds splits extracted text into pages on form-feed markers.
// Extractors that emit no form feeds yield a single page.
func splitFormFeeds(text string) []types.Page {
	parts := strings.Split(text, "\f")
	pages := make([]types.Page, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, types.Page{Number: i + 1, Text: part})
	}
	return pages
}

// Info describes a PDF document without extracting its text.
type Info struct {
	PageCount int
	Encrypted bool
}

// Probe reads the document structure and reports page count and
// encryption. Used to explain empty extractions: an encrypted or
// zero-page file is reported differently from a scanned one.
func Probe(pdfPath string) (Info, error) {
	pdfCtx, err := api.ReadContextFile(pdfPath)
	if err != nil {
		return Info{}, fmt.Errorf("reading %s: %w", pdfPath, err)
	}

	return Info{
		PageCount: pdfCtx.PageCount,
		Encrypted: pdfCtx.XRefTable.Encrypt != nil,
	}, nil
}
