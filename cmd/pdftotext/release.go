// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhkim1009/pdftotext/internal/dist"
	"github.com/jhkim1009/pdftotext/pkg/types"
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Publish staged artifacts as a GitHub release",
	Long: `Release publishes the staged platform artifacts as a GitHub release.
The version comes from --version or from the tag pointing at HEAD; only
v-prefixed version tags qualify. All three platform artifacts must be
present in the dist directory, and a release either carries all of them
or is not created at all.

The token is read from --token, the GITHUB_TOKEN environment variable,
or .secrets/github-token.`,
	RunE: runRelease,
}

func init() {
	releaseCmd.Flags().String("version", "", "release version (default: tag at HEAD)")
	releaseCmd.Flags().String("owner", "jhkim1009", "GitHub repository owner")
	releaseCmd.Flags().String("repo", "pdftotext", "GitHub repository name")
	releaseCmd.Flags().String("dist-dir", "dist", "staging directory holding the built artifacts")
	releaseCmd.Flags().String("token", "", "GitHub API token")

	rootCmd.AddCommand(releaseCmd)
}

func runRelease(cmd *cobra.Command, args []string) error {
	version, _ := cmd.Flags().GetString("version")
	if version == "" {
		tag, ok := dist.HeadTag()
		if !ok {
			return fmt.Errorf("HEAD is not tagged: pass --version or tag the commit")
		}
		version = tag
	}
	if _, ok := dist.TagRef(version); !ok {
		return fmt.Errorf("%q is not a version tag: releases require a v-prefixed tag", version)
	}

	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	token = secretDefault("github-token", token)

	owner, _ := cmd.Flags().GetString("owner")
	repo, _ := cmd.Flags().GetString("repo")
	distDir, _ := cmd.Flags().GetString("dist-dir")

	cfg := types.DistConfig{
		Owner:   owner,
		Repo:    repo,
		DistDir: distDir,
		Token:   token,
	}

	p := dist.NewPublisher(http.DefaultClient, cfg)
	return p.Publish(context.Background(), version, os.Stdout)
}
