package domain

import "go.trai.ch/zerr"

// Command is a base argument vector plus options appended after everything else.
type Command struct {
	Args        []string
	PostOptions []string
}

// Toolchain is a named bundle of compiler and archiver commands.
type Toolchain struct {
	Name      string
	C         Command
	CXX       Command
	Archivist Command

	// External, when set, is the path of an out-of-process builder that
	// compiles and links on busy's behalf.
	External string
}

// IsExternal reports whether the toolchain delegates to an external builder.
func (tc *Toolchain) IsExternal() bool {
	return tc.External != ""
}

// CompilerFor returns the command compiling sources of the given language.
func (tc *Toolchain) CompilerFor(lang Language) (Command, error) {
	switch lang {
	case LanguageC:
		if len(tc.C.Args) > 0 {
			return tc.C, nil
		}
	case LanguageCXX:
		if len(tc.CXX.Args) > 0 {
			return tc.CXX, nil
		}
	}
	err := zerr.With(ErrUnsupportedLanguage, "toolchain", tc.Name)
	return Command{}, zerr.With(err, "language", string(lang))
}

// Linker returns the driver used to link targets of the given language.
// C targets link with the C compiler, everything else with the C++ compiler.
func (tc *Toolchain) Linker(lang Language) (Command, error) {
	if lang == LanguageC && len(tc.C.Args) > 0 {
		return tc.C, nil
	}
	if len(tc.CXX.Args) > 0 {
		return tc.CXX, nil
	}
	return tc.CompilerFor(lang)
}

// Flavor names one build configuration of a project.
type Flavor struct {
	Name string
	Mode BuildMode
}
