package staleness

import (
	"strings"

	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/zerr"
)

// ParseDepfile converts a make-style dependency file, as emitted by -MD -MF,
// into the flat list of prerequisite paths. Continuation lines and escaped
// spaces are handled; phony rules without prerequisites contribute nothing.
// Duplicates are dropped, first occurrence wins.
func ParseDepfile(data []byte) ([]string, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\\\n", " ")

	seen := make(map[string]bool)
	var deps []string
	for lineNo, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		colon := ruleSeparator(line)
		if colon < 0 {
			return nil, zerr.With(domain.ErrDepfileParseFailed, "line", lineNo+1)
		}
		for _, dep := range splitWords(line[colon+1:]) {
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	return deps, nil
}

// ruleSeparator finds the colon ending the target list. A colon followed by a
// path separator is a drive letter, not a separator.
func ruleSeparator(line string) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case ':':
			if i+1 < len(line) && (line[i+1] == '\\' || line[i+1] == '/') {
				continue
			}
			return i
		}
	}
	return -1
}

func splitWords(s string) []string {
	var words []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '#'):
			b.WriteByte(s[i+1])
			i++
		case c == '$' && i+1 < len(s) && s[i+1] == '$':
			b.WriteByte('$')
			i++
		case c == ' ' || c == '\t':
			flush()
		default:
			b.WriteByte(c)
		}
	}
	flush()
	return words
}
