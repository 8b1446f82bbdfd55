//go:build mage

// Package main: platform build targets for the release pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"

	"github.com/jhkim1009/pdftotext/internal/dist"
)

const distDir = "dist"

// Dist groups the per-platform artifact builds.
type Dist mg.Namespace

func buildTarget(name string) error {
	t, err := dist.TargetByName(name)
	if err != nil {
		return err
	}
	b := dist.NewBuilder(distDir, cmdPkg)
	_, err = b.Build(t, os.Stdout)
	return err
}

// Windows stages the Windows amd64 executable under dist/windows-exe/.
func (Dist) Windows() error {
	return buildTarget("windows")
}

// Macos stages the macOS arm64 binary under dist/macos-app/.
func (Dist) Macos() error {
	return buildTarget("macos")
}

// Linux stages the Linux amd64 binary under dist/linux-bin/.
func (Dist) Linux() error {
	return buildTarget("linux")
}

// All builds every platform artifact in parallel.
func (Dist) All() error {
	mg.Deps(Dist.Windows, Dist.Macos, Dist.Linux)

	paths, err := dist.VerifyArtifacts(distDir)
	if err != nil {
		return err
	}
	fmt.Printf("Staged %d artifacts under %s/\n", len(paths), distDir)
	return nil
}
