// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhkim1009/pdftotext/internal/fetch"
	"github.com/jhkim1009/pdftotext/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "pdftotext/2.0"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [urls...]",
	Short: "Download PDFs from URLs",
	Long: `Fetch downloads PDF files from URLs into the destination directory and
records a metadata sidecar per download. Existing files are skipped.
URLs can also be read from a file with --url-file, one per line.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	fetchCmd.Flags().String("dest-dir", "pdfs", "directory downloaded PDFs are written to")
	fetchCmd.Flags().String("url-file", "", "file with one URL per line ('#' starts a comment)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	urls := args
	urlFile, _ := cmd.Flags().GetString("url-file")
	if urlFile != "" {
		fromFile, err := fetch.ReadURLList(urlFile)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("provide one or more URLs, or --url-file")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	destDir, _ := cmd.Flags().GetString("dest-dir")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DownloadDelay: delay,
		DestDir:       destDir,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	result, err := fetch.FetchBatch(context.Background(), client, urls, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d download(s) failed", result.Failed)
	}
	return nil
}
