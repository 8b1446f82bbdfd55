// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements PDF-to-text batch conversion: extraction,
// Korean repair, scoring, and safe output writing. One input file always
// yields exactly one status; a bad file never aborts the batch.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jhkim1009/pdftotext/internal/extract"
	"github.com/jhkim1009/pdftotext/internal/hangul"
	"github.com/jhkim1009/pdftotext/pkg/types"
)

// Converter turns one PDF into a repaired, scored document. The batch
// engine is written against this interface so tests can swap the
// extraction machinery out.
type Converter interface {
	Convert(ctx context.Context, pdfPath string, w io.Writer) (*types.Document, error)
}

// ModeConverter dispatches on the configured extraction mode: smart runs
// every backend and keeps the best result, any other mode runs the named
// backend followed by the repair pipeline.
type ModeConverter struct {
	cfg types.ConversionConfig
}

// NewConverter builds the production converter for cfg.
func NewConverter(cfg types.ConversionConfig) *ModeConverter {
	return &ModeConverter{cfg: cfg}
}

func (m *ModeConverter) Convert(ctx context.Context, pdfPath string, w io.Writer) (*types.Document, error) {
	repair := repairOptions(m.cfg.Repair)

	if m.cfg.Mode == "" || m.cfg.Mode == types.ModeSmart {
		return extract.Smart(ctx, pdfPath, repair, w)
	}

	backend, err := extract.ByName(string(m.cfg.Mode))
	if err != nil {
		return nil, err
	}
	doc, err := backend.Extract(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	for i := range doc.Pages {
		doc.Pages[i].Text = hangul.Repair(doc.Pages[i].Text, repair)
	}
	doc.Score = hangul.Score(doc.Text(false))
	return doc, nil
}

// repairOptions converts the config switches into hangul options.
// A disabled pipeline repairs nothing.
func repairOptions(cfg types.RepairConfig) hangul.Options {
	if !cfg.Enabled {
		return hangul.Options{}
	}
	return hangul.Options{
		Normalize:          cfg.Normalize,
		ReorderJamo:        cfg.ReorderJamo,
		StripInvisible:     cfg.StripInvisible,
		CollapseWhitespace: cfg.CollapseWhitespace,
	}
}

// emptyNotice is written in place of output when a PDF yields no text.
// Mirrors the desktop converter's placeholder file.
const emptyNotice = `가능한 원인:
- 이미지로만 구성된 PDF (스캔 문서)
- 암호화되거나 보호된 PDF
- 특수한 폰트나 인코딩 사용
- 손상된 PDF 파일

해결 방법:
- OCR 프로그램 사용 (이미지 PDF의 경우)
- PDF 암호 해제 후 재시도
- 다른 PDF 뷰어로 다시 저장 후 시도
`

// ConvertFile converts a single PDF into <stem>.txt in outDir. When the
// output file already exists the conversion is skipped. Empty extractions
// produce a placeholder file; extraction errors produce a "<stem>_오류.txt"
// report. Per-file status lines go to w.
func ConvertFile(ctx context.Context, c Converter, pdfPath string, cfg types.ConversionConfig, outDir string, w io.Writer) types.FileResult {
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	outPath := filepath.Join(outDir, stem+".txt")

	res := types.FileResult{
		ID:          stem,
		SourcePDF:   pdfPath,
		ConvertedAt: time.Now().UTC(),
	}

	if _, err := os.Stat(outPath); err == nil {
		fmt.Fprintf(w, "skipped:   %s (already exists)\n", stem)
		res.Status = types.StatusSkipped
		res.OutputPath = outPath
		return res
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", stem, err)
		res.Status = types.StatusFailed
		res.Error = err.Error()
		return res
	}

	doc, err := c.Convert(ctx, pdfPath, w)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", stem, err)
		res.Status = types.StatusFailed
		res.Error = err.Error()
		res.OutputPath = writeErrorReport(pdfPath, err, outDir, w)
		return res
	}

	text := doc.Text(cfg.PageSeparators)
	if strings.TrimSpace(text) == "" {
		enc, werr := WriteText(outPath, describeEmpty(pdfPath))
		if werr != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", stem, werr)
			res.Status = types.StatusFailed
			res.Error = werr.Error()
			return res
		}
		fmt.Fprintf(w, "empty:     %s (placeholder written)\n", stem)
		res.Status = types.StatusEmpty
		res.OutputPath = outPath
		res.Encoding = enc
		return res
	}

	enc, err := WriteText(outPath, text)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", stem, err)
		res.Status = types.StatusFailed
		res.Error = err.Error()
		return res
	}

	res.OutputPath = outPath
	res.Backend = doc.Backend
	res.Score = doc.Score
	res.Encoding = enc
	res.Chars = len([]rune(strings.TrimSpace(text)))
	res.HangulChars = hangul.CountSyllables(text)

	if res.HangulChars > 0 {
		res.Status = types.StatusRecovered
		fmt.Fprintf(w, "converted: %s (%d chars, %d hangul, score=%.1f, %s)\n",
			stem, res.Chars, res.HangulChars, res.Score, enc)
	} else {
		res.Status = types.StatusConverted
		fmt.Fprintf(w, "converted: %s (%d chars, %s)\n", stem, res.Chars, enc)
	}
	return res
}

// describeEmpty prefixes the placeholder notice with what the document
// probe found, so an encrypted PDF is reported as such.
func describeEmpty(pdfPath string) string {
	header := fmt.Sprintf("%s에서 텍스트를 추출할 수 없습니다.\n\n", filepath.Base(pdfPath))
	if info, err := extract.Probe(pdfPath); err == nil {
		if info.Encrypted {
			header += "문서가 암호화되어 있습니다.\n\n"
		} else if info.PageCount > 0 {
			header += fmt.Sprintf("문서는 %d페이지이지만 텍스트 레이어가 없습니다.\n\n", info.PageCount)
		}
	}
	return header + emptyNotice
}

// writeErrorReport writes a "<stem>_오류.txt" file describing the failure.
// Returns the report path, or empty when the report itself could not be
// written.
func writeErrorReport(pdfPath string, convErr error, outDir string, w io.Writer) string {
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	reportPath := filepath.Join(outDir, stem+"_오류.txt")

	msg := fmt.Sprintf("PDF 변환 실패: %s\n오류: %v\n\n다른 변환 방법을 시도해보세요:\n- 다른 백엔드 선택 (--mode)\n- 한글 복구 옵션 조정\n- PDF를 다른 형식으로 저장 후 재시도\n",
		filepath.Base(pdfPath), convErr)

	if _, err := WriteText(reportPath, msg); err != nil {
		fmt.Fprintf(w, "  warning: could not write error report: %v\n", err)
		return ""
	}
	return reportPath
}

// ConvertBatch converts a list of PDFs, printing per-file status to w and
// returning a summary report. Cancellation is checked between files so an
// interrupted batch keeps everything written so far.
func ConvertBatch(ctx context.Context, c Converter, pdfPaths []string, cfg types.ConversionConfig, w io.Writer) (types.BatchReport, error) {
	var report types.BatchReport

	pdfPaths = dedupePaths(pdfPaths)
	outDir := cfg.OutputDir
	if outDir == "" && len(pdfPaths) > 0 {
		outDir = filepath.Dir(pdfPaths[0])
	}

	if cfg.Merge {
		return mergeBatch(ctx, c, pdfPaths, cfg, outDir, w)
	}

	for _, p := range pdfPaths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fmt.Fprintf(w, "processing: %s\n", filepath.Base(p))
		report.Add(ConvertFile(ctx, c, p, cfg, outDir, w))
	}

	writeSummary(w, report)
	return report, nil
}

// mergedFileName is the output name used in merge mode.
const mergedFileName = "merged.txt"

// mergeBatch converts every input into one combined output file with a
// per-document header. Files that fail or come up empty are noted inline
// and counted, so the merged file shows exactly what is missing.
func mergeBatch(ctx context.Context, c Converter, pdfPaths []string, cfg types.ConversionConfig, outDir string, w io.Writer) (types.BatchReport, error) {
	var report types.BatchReport
	var merged strings.Builder

	for _, p := range pdfPaths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		base := filepath.Base(p)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		fmt.Fprintf(w, "processing: %s\n", base)

		res := types.FileResult{
			ID:          stem,
			SourcePDF:   p,
			ConvertedAt: time.Now().UTC(),
		}

		doc, err := c.Convert(ctx, p, w)
		if err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", stem, err)
			res.Status = types.StatusFailed
			res.Error = err.Error()
			report.Add(res)
			fmt.Fprintf(&merged, "\n===== %s =====\n[변환 실패: %v]\n", base, err)
			continue
		}

		text := doc.Text(cfg.PageSeparators)
		if strings.TrimSpace(text) == "" {
			fmt.Fprintf(w, "empty:     %s\n", stem)
			res.Status = types.StatusEmpty
			report.Add(res)
			fmt.Fprintf(&merged, "\n===== %s =====\n[추출된 텍스트 없음]\n", base)
			continue
		}

		res.Backend = doc.Backend
		res.Score = doc.Score
		res.Chars = len([]rune(strings.TrimSpace(text)))
		res.HangulChars = hangul.CountSyllables(text)
		if res.HangulChars > 0 {
			res.Status = types.StatusRecovered
		} else {
			res.Status = types.StatusConverted
		}
		fmt.Fprintf(w, "converted: %s (%d chars)\n", stem, res.Chars)

		fmt.Fprintf(&merged, "\n===== %s =====\n%s\n", base, text)
		report.Add(res)
	}

	if report.Succeeded() > 0 {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return report, fmt.Errorf("creating output directory: %w", err)
		}
		outPath := filepath.Join(outDir, mergedFileName)
		enc, err := WriteText(outPath, merged.String())
		if err != nil {
			return report, fmt.Errorf("writing merged output: %w", err)
		}
		fmt.Fprintf(w, "merged %d document(s) into %s (%s)\n", report.Succeeded(), outPath, enc)
		for i := range report.Results {
			if report.Results[i].Status == types.StatusConverted || report.Results[i].Status == types.StatusRecovered {
				report.Results[i].OutputPath = outPath
			}
		}
	}

	writeSummary(w, report)
	return report, nil
}

func writeSummary(w io.Writer, r types.BatchReport) {
	fmt.Fprintf(w, "\nBatch summary: %d converted (%d with hangul), %d empty, %d failed, %d skipped (total: %d)\n",
		r.Succeeded(), r.Recovered, r.Empty, r.Failed, r.Skipped, r.Total())
}

// dedupePaths drops repeated inputs, keeping first-seen order. A path
// listed twice converts once and appears once in merge mode.
func dedupePaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// CollectPDFs expands file and directory arguments into a deduplicated,
// order-preserving list of PDF paths. Directories are scanned one level
// deep for *.pdf, case-insensitive.
func CollectPDFs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}

		if !info.IsDir() {
			add(arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}

	return out, nil
}
