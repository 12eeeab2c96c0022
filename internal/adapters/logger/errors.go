package logger

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ErrorEntry is one link of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// messager describes an error that can report its own message without the chain.
type messager interface {
	Message() string
}

// collectErrorEntries walks err from the outermost wrapper to the root cause.
// Joined errors are flattened in order.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	current := err

	for current != nil {
		if joined, ok := current.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				entries = append(entries, collectErrorEntries(e)...)
			}
			return entries
		}

		m, ok := current.(messager)
		if !ok {
			// Standard error: its message already includes the rest of the chain.
			return append(entries, ErrorEntry{Message: current.Error()})
		}

		entry := ErrorEntry{Message: m.Message(), Metadata: map[string]any{}}
		if ze, ok := current.(*zerr.Error); ok {
			for k, v := range ze.Metadata() {
				entry.Metadata[k] = v
			}
		}
		entries = append(entries, entry)
		current = errors.Unwrap(current)
	}
	return entries
}

// formatErrorEntries renders entries as an "Error:" line followed by a
// "Caused by:" list. Metadata keys are printed sorted under their message.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		var head, indent string
		switch i {
		case 0:
			head, indent = "Error: ", "       "
		case 1:
			lines = append(lines, "", "  Caused by:")
			fallthrough
		default:
			head, indent = "    → ", "      "
		}

		lines = append(lines, head+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}

		keys := make([]string, 0, len(entry.Metadata))
		for k := range entry.Metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, k, entry.Metadata[k]))
		}
	}

	return strings.Join(lines, "\n")
}
