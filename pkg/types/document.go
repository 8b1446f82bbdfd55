// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// ConversionStatus indicates the outcome of converting a single PDF.
type ConversionStatus string

const (
	// StatusConverted means text was extracted and written.
	StatusConverted ConversionStatus = "converted"

	// StatusRecovered means text was extracted and contains hangul; the
	// Korean recovery pipeline produced readable output.
	StatusRecovered ConversionStatus = "recovered"

	// StatusEmpty means no text could be extracted; a placeholder file
	// explaining likely causes was written instead.
	StatusEmpty ConversionStatus = "empty"

	// StatusFailed means extraction errored; an error report was written.
	StatusFailed ConversionStatus = "failed"

	// StatusSkipped means the output file already existed.
	StatusSkipped ConversionStatus = "skipped"
)

// Page holds the extracted text of one PDF page.
type Page struct {
	// Number is the 1-based page number.
	Number int `json:"number" yaml:"number"`

	// Text is the extracted page text after any repair steps.
	Text string `json:"text" yaml:"text"`
}

// Document is the result of extracting text from one PDF.
type Document struct {
	// SourcePDF is the path of the input file.
	SourcePDF string `json:"source_pdf" yaml:"source_pdf"`

	// Pages holds per-page text in page order.
	Pages []Page `json:"pages" yaml:"pages"`

	// Backend names the extractor that produced this document.
	Backend string `json:"backend" yaml:"backend"`

	// Score is the Korean quality score of the combined text.
	Score float64 `json:"score" yaml:"score"`
}

// Text joins the page texts into one string. When separators is true each
// page is preceded by a "--- 페이지 N ---" marker line.
func (d *Document) Text(separators bool) string {
	var b strings.Builder
	for _, p := range d.Pages {
		if separators {
			fmt.Fprintf(&b, "\n--- 페이지 %d ---\n", p.Number)
		}
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// CharCount returns the rune count of the trimmed combined text.
func (d *Document) CharCount() int {
	total := 0
	for _, p := range d.Pages {
		total += len([]rune(strings.TrimSpace(p.Text)))
	}
	return total
}

// FileResult records the conversion outcome for one input file.
type FileResult struct {
	// ID is a slug derived from the input filename (the stem).
	ID string `json:"id" yaml:"id"`

	// SourcePDF is the input path; OutputPath is the written .txt (or
	// placeholder/report) path.
	SourcePDF  string `json:"source_pdf" yaml:"source_pdf"`
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	// Status is the conversion outcome.
	Status ConversionStatus `json:"status" yaml:"status"`

	// Backend names the extractor used (empty for skipped or failed runs).
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Score is the Korean quality score of the written text.
	Score float64 `json:"score" yaml:"score"`

	// Chars and HangulChars count runes in the written text.
	Chars       int `json:"chars" yaml:"chars"`
	HangulChars int `json:"hangul_chars" yaml:"hangul_chars"`

	// Encoding is the character encoding the output was written in.
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`

	// ConvertedAt is when the conversion finished.
	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`

	// Error holds the extraction error message for failed conversions.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchReport summarizes a batch conversion run.
type BatchReport struct {
	Converted int `json:"converted" yaml:"converted"`
	Recovered int `json:"recovered" yaml:"recovered"`
	Empty     int `json:"empty" yaml:"empty"`
	Failed    int `json:"failed" yaml:"failed"`
	Skipped   int `json:"skipped" yaml:"skipped"`

	// Results holds the per-file outcomes in input order.
	Results []FileResult `json:"results" yaml:"results"`
}

// Add counts a file result into the report.
func (r *BatchReport) Add(res FileResult) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case StatusConverted:
		r.Converted++
	case StatusRecovered:
		r.Recovered++
	case StatusEmpty:
		r.Empty++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
}

// Succeeded returns the number of files that produced text output.
func (r BatchReport) Succeeded() int {
	return r.Converted + r.Recovered
}

// Total returns the total number of files processed.
func (r BatchReport) Total() int {
	return r.Converted + r.Recovered + r.Empty + r.Failed + r.Skipped
}

// HasFailures reports whether any file failed conversion.
func (r BatchReport) HasFailures() bool {
	return r.Failed > 0
}

// Download holds metadata for a fetched PDF, written as a YAML sidecar.
type Download struct {
	// ID is a slug derived from the downloaded filename.
	ID string `json:"id" yaml:"id"`

	// SourceURL is the URL the PDF was downloaded from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// PDFPath is the local filesystem path of the download.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// FetchedAt is when the download completed.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}
