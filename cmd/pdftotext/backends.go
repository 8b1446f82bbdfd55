// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhkim1009/pdftotext/internal/extract"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List extraction backends and their availability",
	Long: `Backends lists every extraction backend in smart-mode priority order
and reports whether each one can run on this machine. The poppler backend
requires a container runtime with the poppler image available.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "%-12s %s\n", "BACKEND", "STATUS")
		for _, b := range extract.Backends() {
			status := "available"
			if !b.Available() {
				status = "unavailable"
			}
			fmt.Fprintf(os.Stdout, "%-12s %s\n", b.Name(), status)
		}
	},
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}
