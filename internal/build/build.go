// Package build holds build-time information about the busy binary.
package build

// Version is the busy release version.
// It defaults to "dev" and is overwritten with -ldflags "-X go.trai.ch/busy/internal/build.Version=...".
var Version = "dev"

// Commit is the VCS revision the binary was built from, if known.
var Commit = ""

// String renders the version line printed by `busy version`.
func String() string {
	if Commit == "" {
		return "busy " + Version
	}
	return "busy " + Version + " (" + Commit + ")"
}
