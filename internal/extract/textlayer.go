// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/jhkim1009/pdftotext/pkg/types"
)

// textLayerExtractor reads the embedded text layer through
// github.com/ledongthuc/pdf. Fast and reliable for well-formed PDFs;
// it has no layout model, so column order can come out wrong.
type textLayerExtractor struct{}

func (e *textLayerExtractor) Name() string { return string(types.ModeTextLayer) }

func (e *textLayerExtractor) Available() bool { return true }

func (e *textLayerExtractor) Extract(ctx context.Context, pdfPath string) (*types.Document, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer f.Close()

	doc := &types.Document{
		SourcePDF: pdfPath,
		Backend:   e.Name(),
	}

	// Font objects are shared across pages; cache them so repeated
	// GetPlainText calls reuse the decoded encodings.
	fonts := make(map[string]*pdf.Font)

	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		p := r.Page(i)
		if p.V.IsNull() {
			doc.Pages = append(doc.Pages, types.Page{Number: i})
			continue
		}

		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}

		text, err := p.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("reading page %d of %s: %w", i, pdfPath, err)
		}
		doc.Pages = append(doc.Pages, types.Page{Number: i, Text: text})
	}

	return doc, nil
}
