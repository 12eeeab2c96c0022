package compile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/zerr"
)

// Prepare queries every external builder used by a non-ignored target once and
// checks that it supports the languages of its targets. A mismatch is a
// configuration error returned before any job runs.
func (b *Batch) Prepare(ctx context.Context, targets []*domain.BuildTarget) error {
	infos := make(map[string]domain.ExternalInfo)
	for _, t := range targets {
		if b.Ignored(t) || t.SkipsBuild() || len(t.Sources.Compilable()) == 0 {
			continue
		}
		tc, err := b.toolchain(t)
		if err != nil {
			return err
		}
		if !tc.IsExternal() {
			continue
		}
		if b.external == nil {
			return zerr.With(domain.ErrUnknownToolchain, "toolchain", tc.Name)
		}
		info, ok := infos[tc.Name]
		if !ok {
			info, err = b.external.Info(ctx, tc)
			if err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrExternalToolFailed.Error()), "toolchain", tc.Name)
			}
			infos[tc.Name] = info
		}
		if !info.Supports(t.Language) {
			err := zerr.With(domain.ErrUnknownToolchain, "toolchain", tc.Name)
			err = zerr.With(err, "target", t.Name)
			return zerr.With(err, "language", string(t.Language))
		}
	}
	return nil
}

func (b *Batch) ensureSetup(ctx context.Context, t *domain.BuildTarget, tc *domain.Toolchain) error {
	b.setupMu.Lock()
	st, ok := b.setup[t.Name]
	if !ok {
		st = &setupState{}
		b.setup[t.Name] = st
	}
	b.setupMu.Unlock()

	st.once.Do(func() {
		local, system, legacy := b.cmds.IncludePaths(t)
		st.err = b.external.SetupTranslationSet(ctx, tc, domain.TranslationSetRequest{
			Target:             t.Name,
			Language:           t.Language,
			IncludePaths:       local,
			SystemIncludePaths: append(system, legacy...),
		})
	})
	return st.err
}

func (b *Batch) compileExternal(ctx context.Context, t *domain.BuildTarget, tc *domain.Toolchain, file string) (domain.JobOutcome, error) {
	layout := b.cmds.Layout()
	req := domain.ExternalCompileRequest{
		Target:  t.Name,
		File:    layout.SourcePath(t, file),
		Output:  layout.ObjectPath(t, file),
		Mode:    layout.Mode,
		Defines: b.cmds.Defines(t),
	}
	argv := append([]string{tc.External, "compile", req.Target, req.File, req.Output, req.Mode.String()}, req.Defines...)
	hash := Fingerprint(argv)

	reason := b.oracle.NeedsCompile(req.File, req.Output, hash)
	if !reason.Stale() {
		if b.oracle.Stats().NotCompilable(req.Output) {
			return b.record(domain.OutcomeSkipped, false), nil
		}
		return b.record(domain.OutcomeUpToDate, false), nil
	}
	if err := b.ensureSetup(ctx, t, tc); err != nil {
		return b.record(domain.OutcomeFailed, false), b.fail(Failure{Step: "setup", Target: t.Name, Argv: argv[:1], Err: err}, err)
	}
	if err := os.MkdirAll(filepath.Dir(req.Output), DirPerm); err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrOutputDirCreateFailed.Error()), "path", filepath.Dir(req.Output))
		return b.record(domain.OutcomeFailed, false), b.fail(Failure{Step: "compile", Target: t.Name, File: file, Err: err}, err)
	}
	b.logger.Debug("external compile " + t.Name + "/" + file + " (" + string(reason) + ")")

	started := time.Now()
	res, err := b.external.Compile(ctx, tc, req)
	if err != nil {
		b.oracle.Stats().Forget(req.Output)
		return b.record(domain.OutcomeFailed, false), b.fail(Failure{
			Step: "compile", Target: t.Name, File: file, Argv: argv, Stdout: []byte(res.Stdout), Stderr: []byte(res.Stderr), Err: err,
		}, err)
	}
	if !res.Compilable {
		b.logger.Warn(t.Name + "/" + file + ": not compilable by " + tc.Name)
		if err := os.Remove(req.Output); err != nil && !errors.Is(err, fs.ErrNotExist) {
			b.logger.Warn("removing stale object " + req.Output + ": " + err.Error())
		}
		b.oracle.Stats().RecordNotCompilable(req.Output, started, hash)
		return b.record(domain.OutcomeSkipped, false), nil
	}

	deps := res.Dependencies
	if !slices.Contains(deps, req.File) {
		deps = append([]string{req.File}, deps...)
	}
	b.oracle.Stats().RecordCompile(req.Output, started, deps, hash)
	if res.Cached {
		return b.record(domain.OutcomeUpToDate, false), nil
	}
	b.markCompiled(t, req.File)
	return b.record(domain.OutcomeBuilt, false), nil
}

func (b *Batch) linkExternal(ctx context.Context, t *domain.BuildTarget, tc *domain.Toolchain, artifact string) (domain.JobOutcome, error) {
	deps := b.cmds.LinkDependencies(t)
	var libs []string
	for _, dep := range append(deps.Static, deps.Dynamic...) {
		if dep.SkipsBuild() {
			libs = append(libs, "-l"+dep.Name)
			continue
		}
		libs = append(libs, b.cmds.Layout().ArtifactPath(dep))
	}
	var sysLibs []string
	for _, tgt := range append([]*domain.BuildTarget{t}, deps.Static...) {
		for _, lib := range tgt.SystemLibraries {
			sysLibs = appendUnique(sysLibs, lib)
		}
	}

	req := domain.ExternalLinkRequest{
		Target:          t.Name,
		Kind:            t.Kind,
		Output:          artifact,
		Objects:         b.linkable(b.cmds.Objects(t)),
		Libraries:       libs,
		SystemLibraries: sysLibs,
		LinkingOptions:  t.LinkingOptions,
	}
	argv := []string{tc.External, "link", t.Name, string(t.Kind), artifact}
	b.logger.Debug("external link " + t.Name + ": " + strings.Join(req.Objects, " "))

	res, err := b.external.Link(ctx, tc, req)
	if err != nil {
		return b.record(domain.OutcomeFailed, true), b.fail(Failure{
			Step: "link", Target: t.Name, Argv: argv, Stdout: []byte(res.Stdout), Stderr: []byte(res.Stderr), Err: err,
		}, err)
	}
	b.markRelinked(t)
	return b.record(domain.OutcomeBuilt, true), nil
}
