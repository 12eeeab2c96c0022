package domain

import "go.trai.ch/zerr"

// BuildMode selects optimisation and debug flags.
type BuildMode string

const (
	// ModeDebug compiles without optimisation and with full debug info.
	ModeDebug BuildMode = "debug"
	// ModeRelease compiles with optimisation.
	ModeRelease BuildMode = "release"
	// ModeReleaseWithSymbols compiles with optimisation and full debug info.
	ModeReleaseWithSymbols BuildMode = "release_with_symbols"
)

// ParseBuildMode validates a mode string. An empty string selects ModeDebug.
func ParseBuildMode(s string) (BuildMode, error) {
	switch m := BuildMode(s); m {
	case "":
		return ModeDebug, nil
	case ModeDebug, ModeRelease, ModeReleaseWithSymbols:
		return m, nil
	default:
		return "", zerr.With(ErrInvalidBuildMode, "mode", s)
	}
}

// Flags returns the compiler flags for the mode.
func (m BuildMode) Flags() []string {
	switch m {
	case ModeRelease:
		return []string{"-O3"}
	case ModeReleaseWithSymbols:
		return []string{"-O3", "-g3"}
	default:
		return []string{"-g3", "-O0"}
	}
}

func (m BuildMode) String() string {
	if m == "" {
		return string(ModeDebug)
	}
	return string(m)
}
