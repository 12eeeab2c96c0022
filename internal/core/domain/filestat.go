package domain

import "time"

// StatRecord is one timestamped observation of a source file.
type StatRecord struct {
	// Timestamp is when the step last succeeded. The zero time means never.
	Timestamp time.Time `json:"timestamp"`

	// Dependencies are the header paths discovered for the file.
	Dependencies []InternedString `json:"dependencies,omitempty"`

	// CommandHash fingerprints the argv that produced the object.
	CommandHash uint64 `json:"command_hash,omitempty"`
}

// IsZero reports whether the step never ran.
func (r StatRecord) IsZero() bool {
	return r.Timestamp.IsZero()
}

// FileStat is the persisted incremental-build record of a single object file.
type FileStat struct {
	// Discovery records the last header dependency scan.
	Discovery StatRecord `json:"discovery"`
	// Compile records the last successful compilation.
	Compile StatRecord `json:"compile"`
	// NotCompilable is set when an external builder declined the source.
	// No object exists for it and it is left out of the link.
	NotCompilable bool `json:"not_compilable,omitempty"`
}

// DependencyPaths returns the discovered header paths as strings.
func (fs FileStat) DependencyPaths() []string {
	out := make([]string, len(fs.Discovery.Dependencies))
	for i, d := range fs.Discovery.Dependencies {
		out[i] = d.String()
	}
	return out
}

// ProcessResult is the outcome of a finished subprocess.
type ProcessResult struct {
	Stdout     []byte
	Stderr     []byte
	ExitStatus int
}

// Success reports whether the process exited with status zero.
func (r ProcessResult) Success() bool {
	return r.ExitStatus == 0
}
