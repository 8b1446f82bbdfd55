// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhkim1009/pdftotext/internal/store"
	"github.com/jhkim1009/pdftotext/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the text of converted documents",
	Long: `Search runs an FTS5 full-text query over the extracted text of every
indexed conversion. Results are ranked by relevance and carry a snippet
around the match. Structured filters (--backend, --status) can be used
alone or combined with a query.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("backend", "", "filter by extraction backend")
	searchCmd.Flags().String("status", "", "filter by conversion status: converted, recovered, empty, failed")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("index-dir", "index", "directory holding the conversion index")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	opts := searchOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --backend, or --status")
	}

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []store.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-10s  %-10s  %s\n",
		"Rank", "Document", "Backend", "Status", "Snippet")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, r := range results {
		id := r.ID
		if len(id) > 20 {
			id = id[:17] + "..."
		}
		snippet := strings.ReplaceAll(r.Snippet, "\n", " ")
		if len(snippet) > 50 {
			snippet = snippet[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-10s  %-10s  %s\n",
			i+1, id, r.Backend, r.Status, snippet)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the conversion index to YAML or JSON",
	Long: `Export writes the conversion records (or a filtered subset) to
export.yaml or export.json in the index directory. Supports the same
filter flags as search for partial exports.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("query", "", "full-text search filter for partial export")
	exportCmd.Flags().String("backend", "", "filter by extraction backend")
	exportCmd.Flags().String("status", "", "filter by conversion status")
	exportCmd.Flags().Int("limit", 0, "maximum records to export (0 = all)")
	exportCmd.Flags().String("index-dir", "index", "directory holding the conversion index")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := searchOptsFromFlags(cmd, args)
	indexDir, _ := cmd.Flags().GetString("index-dir")

	switch format {
	case "yaml", "":
		if err := s.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", indexDir)
	case "json":
		if err := s.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", indexDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	if indexDir == "" {
		indexDir = "index"
	}
	return store.NewStore(types.IndexConfig{IndexDir: indexDir})
}

func searchOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	backend, _ := cmd.Flags().GetString("backend")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:      queryText,
		Backend:    backend,
		Status:     types.ConversionStatus(status),
		MaxResults: limit,
	}
}
