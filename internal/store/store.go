// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists conversion results and builds a full-text index
// over the extracted text.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jhkim1009/pdftotext/pkg/types"
)

const dbFile = "pdftotext.db"

// Store manages the conversion index SQLite database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates the index database at IndexDir/pdftotext.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		indexDir:   cfg.IndexDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source_pdf TEXT NOT NULL,
			output_path TEXT,
			status TEXT NOT NULL,
			backend TEXT,
			score REAL,
			chars INTEGER,
			hangul_chars INTEGER,
			encoding TEXT,
			converted_at TEXT,
			error TEXT,
			content TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_backend ON documents(backend)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='docs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE docs_fts USING fts5(content, content=documents, content_rowid=rowid)`,
			`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
				INSERT INTO docs_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
				INSERT INTO docs_fts(docs_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
				INSERT INTO docs_fts(docs_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO docs_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Record upserts one conversion result together with the extracted text.
// Recording the same ID again replaces the previous row and reindexes the
// content.
func (s *Store) Record(ctx context.Context, res types.FileResult, content string) error {
	convertedAt := ""
	if !res.ConvertedAt.IsZero() {
		convertedAt = res.ConvertedAt.UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, source_pdf, output_path, status, backend, score,
			chars, hangul_chars, encoding, converted_at, error, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source_pdf=excluded.source_pdf, output_path=excluded.output_path,
			status=excluded.status, backend=excluded.backend, score=excluded.score,
			chars=excluded.chars, hangul_chars=excluded.hangul_chars,
			encoding=excluded.encoding, converted_at=excluded.converted_at,
			error=excluded.error, content=excluded.content`,
		res.ID, res.SourcePDF, res.OutputPath, string(res.Status), res.Backend,
		res.Score, res.Chars, res.HangulChars, res.Encoding, convertedAt,
		res.Error, content,
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", res.ID, err)
	}
	return nil
}

// RecordBatch records every result of a batch run, reading the written
// text back for results that produced output. Skipped results are left
// alone so an earlier successful record is not overwritten.
func (s *Store) RecordBatch(ctx context.Context, report types.BatchReport, w io.Writer) error {
	for _, res := range report.Results {
		if res.Status == types.StatusSkipped {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		content := ""
		if res.OutputPath != "" &&
			(res.Status == types.StatusConverted || res.Status == types.StatusRecovered) {
			data, err := os.ReadFile(res.OutputPath)
			if err != nil {
				fmt.Fprintf(w, "  warning: could not read %s for indexing: %v\n", res.OutputPath, err)
			} else {
				content = string(data)
			}
		}

		if err := s.Record(ctx, res, content); err != nil {
			return err
		}
	}
	return nil
}

// History returns the most recent conversion results, newest first. A
// non-positive limit uses the store default.
func (s *Store) History(ctx context.Context, limit int) ([]types.FileResult, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_pdf, output_path, status, backend, score,
			chars, hangul_chars, encoding, converted_at, error
		 FROM documents ORDER BY converted_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var results []types.FileResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (types.FileResult, error) {
	var (
		res         types.FileResult
		status      string
		outputPath  sql.NullString
		backend     sql.NullString
		score       sql.NullFloat64
		chars       sql.NullInt64
		hangulChars sql.NullInt64
		enc         sql.NullString
		convertedAt sql.NullString
		errMsg      sql.NullString
	)
	if err := row.Scan(
		&res.ID, &res.SourcePDF, &outputPath, &status, &backend, &score,
		&chars, &hangulChars, &enc, &convertedAt, &errMsg,
	); err != nil {
		return res, fmt.Errorf("scanning row: %w", err)
	}

	res.Status = types.ConversionStatus(status)
	res.OutputPath = outputPath.String
	res.Backend = backend.String
	res.Score = score.Float64
	res.Chars = int(chars.Int64)
	res.HangulChars = int(hangulChars.Int64)
	res.Encoding = enc.String
	res.Error = errMsg.String
	if convertedAt.Valid && convertedAt.String != "" {
		if t, err := time.Parse(time.RFC3339, convertedAt.String); err == nil {
			res.ConvertedAt = t
		}
	}
	return res, nil
}
