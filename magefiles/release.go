//go:build mage

// Package main: release publication target.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/magefile/mage/mg"

	"github.com/jhkim1009/pdftotext/internal/dist"
	"github.com/jhkim1009/pdftotext/internal/secrets"
	"github.com/jhkim1009/pdftotext/pkg/types"
)

const (
	releaseOwner = "jhkim1009"
	releaseRepo  = "pdftotext"
)

// Release builds every platform artifact and publishes them as a GitHub
// release when HEAD carries a version tag. On untagged commits or
// non-version tags the artifacts are staged and publication is skipped.
func Release() error {
	mg.Deps(Dist.All)

	tag, ok := dist.HeadTag()
	if !ok {
		fmt.Println("HEAD is not tagged; artifacts staged, release skipped.")
		return nil
	}
	version, ok := dist.TagRef(tag)
	if !ok {
		fmt.Printf("Tag %q is not a version tag; artifacts staged, release skipped.\n", tag)
		return nil
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		token = s["github-token"]
	}

	cfg := types.DistConfig{
		Owner:   releaseOwner,
		Repo:    releaseRepo,
		DistDir: distDir,
		Token:   token,
	}

	p := dist.NewPublisher(http.DefaultClient, cfg)
	return p.Publish(context.Background(), version, os.Stdout)
}
