// Package staleness decides whether compile and link steps must run again.
// It only stats files and compares timestamps; it never invokes a tool.
package staleness

import (
	"os"
	"time"

	"go.trai.ch/busy/internal/core/domain"
)

// Reason explains a rebuild decision. The empty Reason means up to date.
type Reason string

// Rebuild reasons.
const (
	UpToDate          Reason = ""
	ReasonForced      Reason = "forced"
	ReasonNoRecord    Reason = "no dependency record"
	ReasonNoOutput    Reason = "output missing"
	ReasonDepMissing  Reason = "dependency missing"
	ReasonDepNewer    Reason = "dependency newer than output"
	ReasonCommand     Reason = "compile command changed"
	ReasonInputs      Reason = "inputs changed this run"
	ReasonDepsChanged Reason = "dependency relinked this run"
)

// Oracle answers rebuild questions from recorded FileStats and the filesystem.
// Stat failures are treated as "needs rebuild", never as errors.
type Oracle struct {
	stats *Table
	force bool
}

// NewOracle creates an Oracle over stats. With force set every step is stale.
func NewOracle(stats *Table, force bool) *Oracle {
	return &Oracle{stats: stats, force: force}
}

// Stats returns the table the oracle reads.
func (o *Oracle) Stats() *Table {
	return o.stats
}

// NeedsCompile decides whether source must be compiled into object.
// commandHash fingerprints the compile argv; zero disables the comparison.
func (o *Oracle) NeedsCompile(source, object string, commandHash uint64) Reason {
	if o.force {
		return ReasonForced
	}
	fs, hasRecord := o.stats.Get(object)
	if hasRecord && fs.NotCompilable {
		return declinedReason(source, fs, commandHash)
	}
	objTime, ok := modTime(object)
	if !ok {
		return ReasonNoOutput
	}
	if !hasRecord || fs.Compile.IsZero() {
		return ReasonNoRecord
	}
	if commandHash != 0 && fs.Compile.CommandHash != commandHash {
		return ReasonCommand
	}
	if srcTime, ok := modTime(source); !ok || srcTime.After(objTime) {
		return ReasonDepNewer
	}
	for _, dep := range fs.Discovery.Dependencies {
		depTime, ok := modTime(dep.String())
		if !ok {
			return ReasonDepMissing
		}
		if depTime.After(objTime) {
			return ReasonDepNewer
		}
	}
	return UpToDate
}

// declinedReason re-asks the builder only when the source or command changed.
func declinedReason(source string, fs domain.FileStat, commandHash uint64) Reason {
	if commandHash != 0 && fs.Compile.CommandHash != commandHash {
		return ReasonCommand
	}
	if srcTime, ok := modTime(source); !ok || srcTime.After(fs.Compile.Timestamp) {
		return ReasonDepNewer
	}
	return UpToDate
}

// NeedsArchive decides whether a static library must be re-archived.
func (o *Oracle) NeedsArchive(objectsChanged bool, archive string, objects []string) Reason {
	switch {
	case o.force:
		return ReasonForced
	case objectsChanged:
		return ReasonInputs
	}
	return newerInputs(archive, objects)
}

// NeedsLink decides whether a shared library or executable must be relinked.
// inputs are the files fed to the linker; any of them newer than output is stale.
// Header-only targets never link.
func (o *Oracle) NeedsLink(t *domain.BuildTarget, ownChanged, depsChanged bool, output string, inputs []string) Reason {
	if t.Kind == domain.KindHeaderOnly {
		return UpToDate
	}
	switch {
	case o.force:
		return ReasonForced
	case ownChanged:
		return ReasonInputs
	case depsChanged:
		return ReasonDepsChanged
	}
	return newerInputs(output, inputs)
}

func newerInputs(output string, inputs []string) Reason {
	outTime, ok := modTime(output)
	if !ok {
		return ReasonNoOutput
	}
	for _, in := range inputs {
		inTime, ok := modTime(in)
		if !ok || inTime.After(outTime) {
			return ReasonDepNewer
		}
	}
	return UpToDate
}

func modTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Stale reports whether the step must run.
func (r Reason) Stale() bool {
	return r != UpToDate
}
