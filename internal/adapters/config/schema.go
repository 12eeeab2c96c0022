package config

// Busyfile represents the structure of the busy.yaml build description.
type Busyfile struct {
	Version          string                  `yaml:"version"`
	BuildDir         string                  `yaml:"build_dir"`
	Toolchains       map[string]ToolchainDTO `yaml:"toolchains"`
	DefaultToolchain string                  `yaml:"default_toolchain"`
	Targets          map[string]TargetDTO    `yaml:"targets"`
}

// ToolchainDTO represents a toolchain definition in the configuration.
type ToolchainDTO struct {
	C         CommandDTO `yaml:"c"`
	CXX       CommandDTO `yaml:"cxx"`
	Archivist CommandDTO `yaml:"archivist"`
	External  string     `yaml:"external"`
}

// CommandDTO is a command line with options appended after all generated flags.
type CommandDTO struct {
	Command     []string `yaml:"command"`
	PostOptions []string `yaml:"post_options"`
}

// TargetDTO represents a target definition in the configuration.
type TargetDTO struct {
	Kind               string           `yaml:"kind"`
	Language           string           `yaml:"language"`
	Path               string           `yaml:"path"`
	Sources            []string         `yaml:"sources"`
	Dependencies       []string         `yaml:"dependencies"`
	IncludePaths       []string         `yaml:"include_paths"`
	SystemIncludePaths []string         `yaml:"system_include_paths"`
	LegacyIncludePaths []IncludePairDTO `yaml:"legacy_include_paths"`
	SystemLibraries    []string         `yaml:"system_libraries"`
	SystemLibraryPaths []string         `yaml:"system_library_paths"`
	LinkingOptions     []string         `yaml:"linking_options"`
	WholeArchive       bool             `yaml:"whole_archive"`
	Precompiled        bool             `yaml:"precompiled"`
	Installed          bool             `yaml:"installed"`
	Toolchain          string           `yaml:"toolchain"`
}

// IncludePairDTO names an include directory inherited from a non-busy build.
type IncludePairDTO struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

const schemaURL = "https://go.trai.ch/busy/schema/busy.schema.json"

// schemaJSON is the JSON schema busy.yaml is validated against before conversion.
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["version", "targets"],
  "properties": {
    "version": {"type": "string", "enum": ["1"]},
    "build_dir": {"type": "string"},
    "default_toolchain": {"type": "string"},
    "toolchains": {
      "type": "object",
      "additionalProperties": {"$ref": "#/definitions/toolchain"}
    },
    "targets": {
      "type": "object",
      "propertyNames": {"pattern": "^[A-Za-z0-9_.+-]+$"},
      "additionalProperties": {"$ref": "#/definitions/target"}
    }
  },
  "definitions": {
    "strings": {"type": "array", "items": {"type": "string"}},
    "command": {
      "type": "object",
      "additionalProperties": false,
      "required": ["command"],
      "properties": {
        "command": {"type": "array", "items": {"type": "string"}, "minItems": 1},
        "post_options": {"$ref": "#/definitions/strings"}
      }
    },
    "toolchain": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "c": {"$ref": "#/definitions/command"},
        "cxx": {"$ref": "#/definitions/command"},
        "archivist": {"$ref": "#/definitions/command"},
        "external": {"type": "string"}
      }
    },
    "target": {
      "type": "object",
      "additionalProperties": false,
      "required": ["kind"],
      "properties": {
        "kind": {"enum": ["static_library", "shared_library", "executable", "header_only"]},
        "language": {"enum": ["c", "c++", "cxx", "cpp"]},
        "path": {"type": "string"},
        "sources": {"$ref": "#/definitions/strings"},
        "dependencies": {"$ref": "#/definitions/strings"},
        "include_paths": {"$ref": "#/definitions/strings"},
        "system_include_paths": {"$ref": "#/definitions/strings"},
        "legacy_include_paths": {
          "type": "array",
          "items": {
            "type": "object",
            "additionalProperties": false,
            "required": ["path"],
            "properties": {"name": {"type": "string"}, "path": {"type": "string"}}
          }
        },
        "system_libraries": {"$ref": "#/definitions/strings"},
        "system_library_paths": {"$ref": "#/definitions/strings"},
        "linking_options": {"$ref": "#/definitions/strings"},
        "whole_archive": {"type": "boolean"},
        "precompiled": {"type": "boolean"},
        "installed": {"type": "boolean"},
        "toolchain": {"type": "string"}
      }
    }
  }
}`
