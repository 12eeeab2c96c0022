// Package fs provides file system adapters for walking project trees and
// expanding source patterns.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"go.trai.ch/busy/internal/core/domain"
)

// skippedDirectories are never descended into. The state directory holds build
// output and must not be picked up as sources or watched.
var skippedDirectories = map[string]bool{
	".git":              true,
	".jj":               true,
	"node_modules":      true,
	domain.StateDirName: true,
}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every regular file below root, skipping version control
// and state directories. Paths start with root.
func (w *Walker) WalkFiles(root string) iter.Seq[string] {
	return w.walk(root, false)
}

// WalkDirs yields root and every directory below it, with the same skips as WalkFiles.
func (w *Walker) WalkDirs(root string) iter.Seq[string] {
	return w.walk(root, true)
}

func (w *Walker) walk(root string, dirs bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // Unreadable entries are left out.
			}
			if d.IsDir() {
				if path != root && skippedDirectories[d.Name()] {
					return filepath.SkipDir
				}
				if !dirs {
					return nil
				}
			} else if dirs || !d.Type().IsRegular() {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// Skipped reports whether path lies inside a directory the walker never enters.
func Skipped(path string) bool {
	for part := range strings.SplitSeq(filepath.ToSlash(filepath.Clean(path)), "/") {
		if skippedDirectories[part] {
			return true
		}
	}
	return false
}
