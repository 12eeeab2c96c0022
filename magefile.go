//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary = "busy"
	binDir = "bin"
)

// Default target - build the binary.
var Default = Build

// ldflags stamps the version and commit into internal/build.
// Outside a git checkout the commit stays empty.
func ldflags() string {
	version := os.Getenv("BUSY_VERSION")
	if version == "" {
		version = "dev"
	}
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return fmt.Sprintf("-X go.trai.ch/busy/internal/build.Version=%s -X go.trai.ch/busy/internal/build.Commit=%s", version, commit)
}

// Build builds the busy binary into bin/.
func Build() error {
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", filepath.Join(binDir, binary), "./cmd/busy")
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Generate regenerates the gomock mocks of the ports package.
func Generate() error {
	return sh.RunV("go", "generate", "./internal/core/ports/...")
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm(binDir)
}

// Lint namespace for linting commands.
type Lint mg.Namespace

// All runs all linters.
func (Lint) All() {
	mg.SerialDeps(Lint.Vet, Lint.Golangci)
}

// Vet runs go vet.
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Golangci runs golangci-lint.
func (Lint) Golangci() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// QA runs linters and tests.
func QA() {
	mg.SerialDeps(Lint.All, Test, Build)
}
