package domain

import "go.trai.ch/zerr"

// Configuration errors. These abort a build before any job is scheduled.
var (
	// ErrTargetAlreadyExists is returned when two targets share a name.
	ErrTargetAlreadyExists = zerr.New("target already exists")

	// ErrTargetNotFound is returned when a requested target is not part of the project.
	ErrTargetNotFound = zerr.New("target not found")

	// ErrMissingDependency is returned when a target depends on a name that is not a target.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when the "depends on" relation contains a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrUnknownToolchain is returned when no toolchain serves a target's language.
	ErrUnknownToolchain = zerr.New("unknown toolchain")

	// ErrUnsupportedLanguage is returned when a toolchain cannot compile a target's language.
	ErrUnsupportedLanguage = zerr.New("language not supported by toolchain")

	// ErrInvalidTargetKind is returned for an unrecognised target kind.
	ErrInvalidTargetKind = zerr.New("invalid target kind, expected static_library, shared_library, executable or header_only")

	// ErrInvalidLanguage is returned for an unrecognised source language.
	ErrInvalidLanguage = zerr.New("invalid language, expected c or c++")

	// ErrInvalidBuildMode is returned for an unrecognised build mode.
	ErrInvalidBuildMode = zerr.New("invalid build mode, expected debug, release or release_with_symbols")

	// ErrReservedTargetName is returned when a target uses the reserved name "all".
	ErrReservedTargetName = zerr.New("target name 'all' is reserved")

	// ErrEntityNotFound is returned when a graph node has no adjacent node of the requested kind.
	ErrEntityNotFound = zerr.New("entity not found")

	// ErrDuplicateJob is returned when a job name is inserted twice.
	ErrDuplicateJob = zerr.New("duplicate job")

	// ErrUnknownJob is returned when a job is blocked by a name that was never inserted.
	ErrUnknownJob = zerr.New("blocked by unknown job")

	// ErrQueueStalled is recorded when unfinished jobs remain but none can become ready.
	ErrQueueStalled = zerr.New("work queue stalled")
)

// Execution errors. These are recorded per job and surfaced once the build has drained.
var (
	// ErrBuildExecutionFailed is returned when at least one job failed.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrCompileFailed is returned when the compiler exits with a non-zero status.
	ErrCompileFailed = zerr.New("compilation failed")

	// ErrLinkFailed is returned when the archiver or linker exits with a non-zero status.
	ErrLinkFailed = zerr.New("linking failed")

	// ErrExternalToolFailed is returned when an external builder writes to stderr or exits non-zero.
	ErrExternalToolFailed = zerr.New("external toolchain failed")

	// ErrExternalToolResponse is returned when an external builder answers with malformed output.
	ErrExternalToolResponse = zerr.New("malformed external toolchain response")

	// ErrProcessStartFailed is returned when a subprocess cannot be started at all.
	ErrProcessStartFailed = zerr.New("failed to start process")

	// ErrJobPanicked is recorded when a job action panics.
	ErrJobPanicked = zerr.New("job panicked")

	// ErrJobSkipped is recorded when a job is not started because the build was cancelled.
	ErrJobSkipped = zerr.New("job skipped")

	// ErrOutputDirCreateFailed is returned when an object or artifact directory cannot be created.
	ErrOutputDirCreateFailed = zerr.New("failed to create output directory")

	// ErrDepfileParseFailed is returned when a compiler dependency file is malformed.
	ErrDepfileParseFailed = zerr.New("failed to parse dependency file")
)

// Persistence and configuration I/O errors.
var (
	// ErrStoreCreateFailed is returned when the FileStat store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create file stat store directory")

	// ErrStoreReadFailed is returned when the FileStat store cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read file stats")

	// ErrStoreUnmarshalFailed is returned when the FileStat store cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal file stats")

	// ErrStoreMarshalFailed is returned when the FileStat store cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal file stats")

	// ErrStoreWriteFailed is returned when the FileStat store cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write file stats")

	// ErrConfigNotFound is returned when no busy.yaml exists in cwd or any parent.
	ErrConfigNotFound = zerr.New("could not find busy.yaml")

	// ErrConfigReadFailed is returned when the build description cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the build description is not valid YAML.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when the build description violates the schema.
	ErrConfigInvalid = zerr.New("config file does not match schema")

	// ErrSourceGlobFailed is returned when a source pattern is malformed.
	ErrSourceGlobFailed = zerr.New("failed to expand source pattern")

	// ErrCleanFailed is returned when build outputs cannot be removed.
	ErrCleanFailed = zerr.New("failed to remove build outputs")
)
