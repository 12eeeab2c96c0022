// Package toolchain drives out-of-process builders.
//
// A builder is a binary named by a toolchain's `external` setting. busy runs it
// once per request with a subcommand and flags; the builder answers with one
// JSON object on stdout. Anything it writes to stderr fails the request.
package toolchain

import (
	"context"
	"encoding/json"
	"strings"

	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/busy/internal/core/ports"
	"go.trai.ch/zerr"
)

// Subcommands understood by external builders.
const (
	CmdInfo                = "info"
	CmdSetupTranslationSet = "setup_translation_set"
	CmdCompile             = "compile"
	CmdLink                = "link"
)

// Builder implements ports.ExternalToolchain on top of ports.Process.
type Builder struct {
	process ports.Process
}

// NewBuilder creates a Builder spawning builders through process.
func NewBuilder(process ports.Process) *Builder {
	return &Builder{process: process}
}

// Info asks the builder which languages it compiles.
func (b *Builder) Info(ctx context.Context, tc *domain.Toolchain) (domain.ExternalInfo, error) {
	var info domain.ExternalInfo
	res, err := b.invoke(ctx, tc, []string{CmdInfo})
	if err != nil {
		return info, err
	}
	if err := decode(res.Stdout, &info); err != nil {
		return info, zerr.With(zerr.With(err, "toolchain", tc.Name), "command", CmdInfo)
	}
	return info, nil
}

// SetupTranslationSet registers the include paths of one target.
func (b *Builder) SetupTranslationSet(ctx context.Context, tc *domain.Toolchain, req domain.TranslationSetRequest) error {
	args := []string{CmdSetupTranslationSet, "--target", req.Target, "--language", string(req.Language)}
	for _, p := range req.IncludePaths {
		args = append(args, "-I", p)
	}
	for _, p := range req.SystemIncludePaths {
		args = append(args, "-isystem", p)
	}
	_, err := b.invoke(ctx, tc, args)
	return err
}

// Compile compiles one file. The result is returned together with any error
// so the builder's output can be reported.
func (b *Builder) Compile(
	ctx context.Context,
	tc *domain.Toolchain,
	req domain.ExternalCompileRequest,
) (domain.ExternalCompileResult, error) {
	args := []string{
		CmdCompile,
		"--target", req.Target,
		"--file", req.File,
		"--output", req.Output,
		"--mode", req.Mode.String(),
	}
	for _, d := range req.Defines {
		args = append(args, "-D", d)
	}

	var result domain.ExternalCompileResult
	res, err := b.invoke(ctx, tc, args)
	if err != nil {
		result.Stdout, result.Stderr = string(res.Stdout), string(res.Stderr)
		return result, err
	}
	if err := decode(res.Stdout, &result); err != nil {
		result.Stdout = string(res.Stdout)
		return result, zerr.With(zerr.With(err, "toolchain", tc.Name), "file", req.File)
	}
	if result.Stderr != "" {
		return result, zerr.With(zerr.With(domain.ErrExternalToolFailed, "toolchain", tc.Name), "file", req.File)
	}
	return result, nil
}

// Link links one target.
func (b *Builder) Link(ctx context.Context, tc *domain.Toolchain, req domain.ExternalLinkRequest) (domain.ExternalLinkResult, error) {
	args := []string{
		CmdLink,
		"--target", req.Target,
		"--kind", string(req.Kind),
		"--output", req.Output,
	}
	for _, o := range req.Objects {
		args = append(args, "--object", o)
	}
	for _, l := range req.Libraries {
		args = append(args, "--library", l)
	}
	for _, l := range req.SystemLibraries {
		args = append(args, "--system-library", l)
	}
	for _, o := range req.LinkingOptions {
		args = append(args, "--linking-option", o)
	}

	var result domain.ExternalLinkResult
	res, err := b.invoke(ctx, tc, args)
	if err != nil {
		result.Stdout, result.Stderr = string(res.Stdout), string(res.Stderr)
		return result, err
	}
	if err := decode(res.Stdout, &result); err != nil {
		result.Stdout = string(res.Stdout)
		return result, zerr.With(zerr.With(err, "toolchain", tc.Name), "target", req.Target)
	}
	if result.Stderr != "" {
		return result, zerr.With(zerr.With(domain.ErrExternalToolFailed, "toolchain", tc.Name), "target", req.Target)
	}
	return result, nil
}

// invoke runs the builder. Output on stderr fails the call even when the
// builder exits with status zero.
func (b *Builder) invoke(ctx context.Context, tc *domain.Toolchain, args []string) (domain.ProcessResult, error) {
	argv := append([]string{tc.External}, args...)
	res, err := b.process.Run(ctx, argv, "")
	if err != nil {
		return res, zerr.With(zerr.Wrap(err, domain.ErrExternalToolFailed.Error()), "toolchain", tc.Name)
	}

	if len(res.Stderr) > 0 || !res.Success() {
		err := zerr.With(domain.ErrExternalToolFailed, "toolchain", tc.Name)
		err = zerr.With(err, "command", args[0])
		err = zerr.With(err, "exit_code", res.ExitStatus)
		if msg := strings.TrimSpace(string(res.Stderr)); msg != "" {
			err = zerr.With(err, "stderr", msg)
		}
		return res, err
	}
	return res, nil
}

func decode(stdout []byte, v any) error {
	if err := json.Unmarshal(stdout, v); err != nil {
		return zerr.Wrap(err, domain.ErrExternalToolResponse.Error())
	}
	return nil
}
