// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jhkim1009/pdftotext/internal/hangul"
	"github.com/jhkim1009/pdftotext/pkg/types"
)

// Smart runs every available backend over the PDF, repairs each result,
// scores it for Korean quality, and returns the best document. Ties are
// broken by text length: when two backends score the same, the one that
// recovered more text wins. Per-backend status lines go to w.
//
// Backend failures are logged and skipped; Smart only fails when no
// backend is available at all or the context is cancelled. A run where
// every backend errored or produced nothing returns an empty document,
// which the caller reports as an empty extraction.
func Smart(ctx context.Context, pdfPath string, repair hangul.Options, w io.Writer) (*types.Document, error) {
	backends, err := AvailableBackends()
	if err != nil {
		return nil, err
	}
	return pickBest(ctx, backends, pdfPath, repair, w)
}

// pickBest runs the given backends over one PDF in order and keeps the
// highest scoring repaired result.
func pickBest(ctx context.Context, backends []Extractor, pdfPath string, repair hangul.Options, w io.Writer) (*types.Document, error) {
	best := &types.Document{SourcePDF: pdfPath}
	bestLen := 0

	for _, b := range backends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := b.Extract(ctx, pdfPath)
		if err != nil {
			fmt.Fprintf(w, "  %s: failed (%v)\n", b.Name(), err)
			continue
		}

		for i := range doc.Pages {
			doc.Pages[i].Text = hangul.Repair(doc.Pages[i].Text, repair)
		}

		combined := doc.Text(false)
		doc.Score = hangul.Score(combined)
		textLen := len(strings.TrimSpace(combined))

		fmt.Fprintf(w, "  %s: score=%.1f chars=%d\n", b.Name(), doc.Score, textLen)

		if doc.Score > best.Score || (doc.Score == best.Score && textLen > bestLen) {
			best = doc
			bestLen = textLen
		}
	}

	if best.Backend != "" {
		fmt.Fprintf(w, "  selected: %s (score=%.1f)\n", best.Backend, best.Score)
	}

	return best, nil
}
