// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dist implements the build and release pipeline: cross-compiling
// the CLI for each supported platform into a staging directory, and
// publishing tagged versions as GitHub releases with an all-or-none asset
// guarantee.
package dist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

const artifactBase = "PDFtoText"

// Target describes one platform build.
type Target struct {
	// Name is the short platform label ("windows", "macos", "linux").
	Name string

	// GOOS and GOARCH select the cross-compilation platform.
	GOOS   string
	GOARCH string

	// Artifact is the output binary name inside the stage directory.
	Artifact string

	// StageDir is the per-platform directory under the dist root.
	StageDir string
}

// AssetName returns the name the artifact is uploaded under for a release
// of the given version.
func (t Target) AssetName(version string) string {
	ext := filepath.Ext(t.Artifact)
	return fmt.Sprintf("%s-%s-%s-%s%s", artifactBase, version, t.GOOS, t.GOARCH, ext)
}

// Targets returns the supported release platforms.
func Targets() []Target {
	return []Target{
		{Name: "windows", GOOS: "windows", GOARCH: "amd64", Artifact: artifactBase + ".exe", StageDir: "windows-exe"},
		{Name: "macos", GOOS: "darwin", GOARCH: "arm64", Artifact: artifactBase, StageDir: "macos-app"},
		{Name: "linux", GOOS: "linux", GOARCH: "amd64", Artifact: artifactBase, StageDir: "linux-bin"},
	}
}

// TargetByName returns the target with the given short label.
func TargetByName(name string) (Target, error) {
	for _, t := range Targets() {
		if t.Name == name {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("unknown build target %q", name)
}

// buildExecutor abstracts command execution for testing.
type buildExecutor interface {
	Run(name string, args []string, env []string, stdout, stderr io.Writer) error
}

// osBuildExecutor is the production executor backed by os/exec.
type osBuildExecutor struct{}

func (o *osBuildExecutor) Run(name string, args []string, env []string, stdout, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Builder cross-compiles the CLI into a staging directory.
type Builder struct {
	exec    buildExecutor
	distDir string
	mainPkg string
}

// NewBuilder returns a Builder staging artifacts under distDir.
func NewBuilder(distDir, mainPkg string) *Builder {
	return &Builder{
		exec:    &osBuildExecutor{},
		distDir: distDir,
		mainPkg: mainPkg,
	}
}

// Build compiles one target into its stage directory and returns the
// artifact path.
func (b *Builder) Build(t Target, w io.Writer) (string, error) {
	stageDir := filepath.Join(b.distDir, t.StageDir)
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", stageDir, err)
	}

	out := filepath.Join(stageDir, t.Artifact)
	fmt.Fprintf(w, "building %s (%s/%s)\n", t.Name, t.GOOS, t.GOARCH)

	args := []string{"build", "-trimpath", "-ldflags", "-s -w", "-o", out, b.mainPkg}
	// Cross targets have no C toolchain; every dependency (the sqlite
	// driver included) is pure Go, so all artifacts build static.
	env := []string{"GOOS=" + t.GOOS, "GOARCH=" + t.GOARCH, "CGO_ENABLED=0"}
	if err := b.exec.Run("go", args, env, w, w); err != nil {
		return "", fmt.Errorf("building %s: %w", t.Name, err)
	}

	fmt.Fprintf(w, "built %s\n", out)
	return out, nil
}

// BuildResult holds the outcome of one platform build.
type BuildResult struct {
	Target Target
	Path   string
	Err    error
}

// syncWriter serializes status output from concurrent builds.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// BuildAll compiles every target concurrently. All builds run to
// completion even when one fails; the returned error joins the failures.
func (b *Builder) BuildAll(w io.Writer) ([]BuildResult, error) {
	targets := Targets()
	results := make([]BuildResult, len(targets))
	w = &syncWriter{w: w}

	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t Target) {
			defer wg.Done()
			path, err := b.Build(t, w)
			results[i] = BuildResult{Target: t, Path: path, Err: err}
		}(i, t)
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}

// VerifyArtifacts checks that every target's artifact exists and is
// non-empty under distDir, returning the artifact paths in target order.
func VerifyArtifacts(distDir string) ([]string, error) {
	var paths []string
	for _, t := range Targets() {
		p := filepath.Join(distDir, t.StageDir, t.Artifact)
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("missing artifact for %s: %w", t.Name, err)
		}
		if info.Size() == 0 {
			return nil, fmt.Errorf("artifact for %s is empty: %s", t.Name, p)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
