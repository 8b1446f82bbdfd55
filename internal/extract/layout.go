// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"

	rpdf "rsc.io/pdf"

	"github.com/jhkim1009/pdftotext/pkg/types"
)

// layoutExtractor reads positioned text runs through rsc.io/pdf and
// reassembles lines from their coordinates. Slower than the plain text
// layer read, but it keeps reading order intact on multi-column pages,
// which matters for hangul word boundaries.
type layoutExtractor struct{}

func (e *layoutExtractor) Name() string { return string(types.ModeLayout) }

func (e *layoutExtractor) Available() bool { return true }

func (e *layoutExtractor) Extract(ctx context.Context, pdfPath string) (doc *types.Document, err error) {
	// rsc.io/pdf panics on malformed files instead of returning errors.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("parsing %s: %v", pdfPath, r)
		}
	}()

	r, err := rpdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pdfPath, err)
	}

	doc = &types.Document{
		SourcePDF: pdfPath,
		Backend:   e.Name(),
	}

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

		doc.Pages = append(doc.Pages, types.Page{
			Number: i,
			Text:   assemblePage(p.Content().Text),
		})
	}

	return doc, nil
}

// lineGap is the vertical distance (in PDF points) below which two text
// runs are considered part of the same line.
const lineGap = 2.0

// assemblePage orders text runs top-to-bottom, left-to-right and joins
// them into lines. PDF Y coordinates grow upward, so higher Y means an
// earlier line.
func assemblePage(texts []rpdf.Text) string {
	if len(texts) == 0 {
		return ""
	}

	runs := make([]rpdf.Text, len(texts))
	copy(runs, texts)
	sort.SliceStable(runs, func(i, j int) bool {
		if di := runs[i].Y - runs[j].Y; di > lineGap || di < -lineGap {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	var b strings.Builder
	lineY := runs[0].Y
	for _, t := range runs {
		if lineY-t.Y > lineGap {
			b.WriteString("\n")
			lineY = t.Y
		}
		b.WriteString(t.S)
	}
	return b.String()
}
