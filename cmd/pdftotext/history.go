// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversions from the index",
	Long: `History lists the most recent conversion records, newest first, with
backend, status, score, and character counts.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum records (0 = use default)")
	historyCmd.Flags().Bool("json", false, "output records as JSON")
	historyCmd.Flags().String("index-dir", "index", "directory holding the conversion index")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	results, err := s.History(context.Background(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No conversions recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-10s  %-10s  %7s  %7s  %7s  %s\n",
		"Document", "Backend", "Status", "Score", "Chars", "Hangul", "Converted")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 95))

	for _, r := range results {
		id := r.ID
		if len(id) > 20 {
			id = id[:17] + "..."
		}
		converted := ""
		if !r.ConvertedAt.IsZero() {
			converted = r.ConvertedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-10s  %-10s  %7.1f  %7d  %7d  %s\n",
			id, r.Backend, r.Status, r.Score, r.Chars, r.HangulChars, converted)
	}

	fmt.Fprintf(os.Stdout, "\n%d records\n", len(results))
	return nil
}
