package fs

import (
	"path/filepath"
	"slices"
	"strings"
)

// globstar matches any number of directories, including none.
const globstar = "**"

// Glob expands pattern relative to dir and returns the matching files as sorted
// paths relative to dir. Besides filepath.Match syntax, a "**" path segment
// matches zero or more directories.
func (w *Walker) Glob(dir, pattern string) ([]string, error) {
	segments := strings.Split(filepath.ToSlash(filepath.Clean(pattern)), "/")
	if err := validate(segments); err != nil {
		return nil, err
	}

	if !slices.Contains(segments, globstar) {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(matches))
		for _, m := range matches {
			if rel, err := filepath.Rel(dir, m); err == nil && !Skipped(rel) {
				out = append(out, rel)
			}
		}
		return out, nil
	}

	var out []string
	for path := range w.WalkFiles(dir) {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			continue
		}
		if matchSegments(segments, strings.Split(filepath.ToSlash(rel), "/")) {
			out = append(out, rel)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Match reports whether the slash-separated relative path name matches pattern.
func Match(pattern, name string) (bool, error) {
	segments := strings.Split(filepath.ToSlash(filepath.Clean(pattern)), "/")
	if err := validate(segments); err != nil {
		return false, err
	}
	return matchSegments(segments, strings.Split(filepath.ToSlash(filepath.Clean(name)), "/")), nil
}

func validate(segments []string) error {
	for _, seg := range segments {
		if seg == globstar {
			continue
		}
		if _, err := filepath.Match(seg, ""); err != nil {
			return err
		}
	}
	return nil
}

// matchSegments expects validated segments.
func matchSegments(pattern, name []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == globstar {
			for i := 0; i <= len(name); i++ {
				if matchSegments(pattern[1:], name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		if ok, _ := filepath.Match(pattern[0], name[0]); !ok {
			return false
		}
		pattern, name = pattern[1:], name[1:]
	}
	return len(name) == 0
}
