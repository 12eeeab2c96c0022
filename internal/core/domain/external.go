package domain

import "slices"

// ExternalInfo is the answer of an external builder's "info" command.
type ExternalInfo struct {
	Name      string     `json:"name"`
	Languages []Language `json:"languages"`
}

// Supports reports whether the builder compiles lang.
func (i ExternalInfo) Supports(lang Language) bool {
	return slices.Contains(i.Languages, lang)
}

// TranslationSetRequest registers one target with an external builder.
type TranslationSetRequest struct {
	Target             string
	Language           Language
	IncludePaths       []string
	SystemIncludePaths []string
}

// ExternalCompileRequest asks an external builder to compile one file.
type ExternalCompileRequest struct {
	Target  string
	File    string
	Output  string
	Mode    BuildMode
	Defines []string
}

// ExternalCompileResult is the structured answer of an external compile.
type ExternalCompileResult struct {
	Stdout       string   `json:"stdout"`
	Stderr       string   `json:"stderr"`
	Dependencies []string `json:"dependencies"`
	Cached       bool     `json:"cached"`
	Compilable   bool     `json:"compilable"`
	OutputFiles  []string `json:"output_files"`
}

// ExternalLinkRequest asks an external builder to link one target.
type ExternalLinkRequest struct {
	Target          string
	Kind            TargetKind
	Output          string
	Objects         []string
	Libraries       []string
	SystemLibraries []string
	LinkingOptions  []string
}

// ExternalLinkResult is the structured answer of an external link.
type ExternalLinkResult struct {
	Stdout      string   `json:"stdout"`
	Stderr      string   `json:"stderr"`
	OutputFiles []string `json:"output_files"`
}
