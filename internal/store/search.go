// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jhkim1009/pdftotext/pkg/types"
)

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// Backend filters by the extractor that produced the document.
	Backend string

	// Status filters by conversion status.
	Status types.ConversionStatus

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Backend == "" && q.Status == ""
}

// SearchResult is a conversion record with a match snippet.
type SearchResult struct {
	types.FileResult
	Snippet string  `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	Rank    float64 `json:"-" yaml:"-"`
}

// Search queries the index with optional full-text search and structured
// filters. Full-text matches are ranked by relevance and carry a snippet
// around the match; structured-only queries are sorted newest first.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]SearchResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT d.id, d.source_pdf, d.output_path, d.status, d.backend, d.score,
				d.chars, d.hangul_chars, d.encoding, d.converted_at, d.error,
				snippet(docs_fts, 0, '[', ']', '…', 12), docs_fts.rank
			FROM docs_fts
			JOIN documents d ON d.rowid = docs_fts.rowid
			WHERE docs_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT d.id, d.source_pdf, d.output_path, d.status, d.backend, d.score,
				d.chars, d.hangul_chars, d.encoding, d.converted_at, d.error,
				'', 0 AS rank
			FROM documents d
			WHERE 1=1`)
	}

	if opts.Backend != "" {
		qb.WriteString(` AND d.backend = ?`)
		args = append(args, opts.Backend)
	}

	if opts.Status != "" {
		qb.WriteString(` AND d.status = ?`)
		args = append(args, string(opts.Status))
	}

	if useFTS {
		qb.WriteString(` ORDER BY docs_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY d.converted_at DESC, d.id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			sr          SearchResult
			status      string
			outputPath  sql.NullString
			backend     sql.NullString
			score       sql.NullFloat64
			chars       sql.NullInt64
			hangulChars sql.NullInt64
			enc         sql.NullString
			convertedAt sql.NullString
			errMsg      sql.NullString
			snip        sql.NullString
		)
		if err := rows.Scan(
			&sr.ID, &sr.SourcePDF, &outputPath, &status, &backend, &score,
			&chars, &hangulChars, &enc, &convertedAt, &errMsg,
			&snip, &sr.Rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		sr.Status = types.ConversionStatus(status)
		sr.OutputPath = outputPath.String
		sr.Backend = backend.String
		sr.Score = score.Float64
		sr.Chars = int(chars.Int64)
		sr.HangulChars = int(hangulChars.Int64)
		sr.Encoding = enc.String
		sr.Error = errMsg.String
		sr.Snippet = snip.String
		if convertedAt.Valid && convertedAt.String != "" {
			if t, err := time.Parse(time.RFC3339, convertedAt.String); err == nil {
				sr.ConvertedAt = t
			}
		}

		results = append(results, sr)
	}

	return results, rows.Err()
}
