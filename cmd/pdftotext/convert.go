// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhkim1009/pdftotext/internal/convert"
	"github.com/jhkim1009/pdftotext/internal/store"
	"github.com/jhkim1009/pdftotext/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [pdfs or directories...]",
	Short: "Convert PDF files to text",
	Long: `Convert extracts text from PDF files. Directory arguments are scanned
one level deep for PDFs. In smart mode (the default) every available
backend runs and the result with the best Korean quality score wins;
--mode pins a single backend.

Korean recovery normalizes decomposed hangul, reorders displaced jamo,
and strips invisible characters. Results are recorded in the conversion
index unless --no-index is given.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("mode", "smart", "extraction mode: smart, textlayer, layout, pdfcpu, rawscan, or poppler")
	convertCmd.Flags().StringP("output-dir", "o", "", "output directory (default: next to the first input)")
	convertCmd.Flags().Bool("merge", false, "merge all inputs into a single output file")
	convertCmd.Flags().Bool("page-separators", true, "insert page marker lines between pages")
	convertCmd.Flags().Bool("no-repair", false, "disable the Korean recovery pipeline")
	convertCmd.Flags().Bool("no-normalize", false, "skip Unicode NFC normalization during repair")
	convertCmd.Flags().Bool("no-reorder", false, "skip jamo reordering during repair")
	convertCmd.Flags().Bool("no-index", false, "do not record results in the conversion index")
	convertCmd.Flags().String("index-dir", "index", "directory holding the conversion index")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more PDF files or directories")
	}

	pdfs, err := convert.CollectPDFs(args)
	if err != nil {
		return err
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("no PDF files found in %v", args)
	}

	mode, _ := cmd.Flags().GetString("mode")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	merge, _ := cmd.Flags().GetBool("merge")
	pageSeparators, _ := cmd.Flags().GetBool("page-separators")
	noRepair, _ := cmd.Flags().GetBool("no-repair")
	noNormalize, _ := cmd.Flags().GetBool("no-normalize")
	noReorder, _ := cmd.Flags().GetBool("no-reorder")

	repair := types.DefaultRepairConfig()
	if noRepair {
		repair.Enabled = false
	}
	if noNormalize {
		repair.Normalize = false
	}
	if noReorder {
		repair.ReorderJamo = false
	}

	cfg := types.ConversionConfig{
		Mode:           types.ExtractionMode(mode),
		OutputDir:      outputDir,
		Merge:          merge,
		PageSeparators: pageSeparators,
		Repair:         repair,
	}

	ctx := context.Background()
	conv := convert.NewConverter(cfg)
	report, err := convert.ConvertBatch(ctx, conv, pdfs, cfg, os.Stdout)
	if err != nil {
		return err
	}

	noIndex, _ := cmd.Flags().GetBool("no-index")
	if !noIndex {
		if err := recordReport(ctx, cmd, report); err != nil {
			fmt.Fprintf(os.Stderr, "warning: indexing failed: %v\n", err)
		}
	}

	if report.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", report.Failed)
	}
	return nil
}

func recordReport(ctx context.Context, cmd *cobra.Command, report types.BatchReport) error {
	indexDir, _ := cmd.Flags().GetString("index-dir")

	s, err := store.NewStore(types.IndexConfig{IndexDir: indexDir})
	if err != nil {
		return err
	}
	defer s.Close()

	return s.RecordBatch(ctx, report, os.Stderr)
}
