// Package shell runs compilers, archivers and external builders as child processes.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/busy/internal/core/ports"
	"go.trai.ch/zerr"
)

// Process implements ports.Process using os/exec.
type Process struct {
	logger ports.Logger
	env    []string
}

// NewProcess creates a Process whose children inherit the allow-listed
// variables of the current environment.
func NewProcess(logger ports.Logger) *Process {
	return &Process{
		logger: logger,
		env:    resolveEnvironment(os.Environ(), nil),
	}
}

// WithEnv adds KEY=VALUE entries to the child environment, replacing inherited ones.
func (p *Process) WithEnv(overrides map[string]string) *Process {
	p.env = resolveEnvironment(os.Environ(), overrides)
	return p
}

// Run executes argv in dir and waits for it to exit.
func (p *Process) Run(ctx context.Context, argv []string, dir string) (domain.ProcessResult, error) {
	if len(argv) == 0 {
		return domain.ProcessResult{}, zerr.With(domain.ErrProcessStartFailed, "reason", "empty command")
	}

	name := argv[0]
	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, p.env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, argv[1:]...) //nolint:gosec // argv comes from the build description
	cmd.Args[0] = name
	cmd.Dir = dir
	cmd.Env = p.env

	var stdout, stderr bytes.Buffer
	stdoutLog := &logWriter{logger: p.logger, prefix: filepath.Base(name) + ": "}
	stderrLog := &logWriter{logger: p.logger, prefix: filepath.Base(name) + " (stderr): "}
	cmd.Stdout = io.MultiWriter(&stdout, stdoutLog)
	cmd.Stderr = io.MultiWriter(&stderr, stderrLog)

	err := cmd.Run()
	_ = stdoutLog.Close()
	_ = stderrLog.Close()

	res := domain.ProcessResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitStatus = -1
		return res, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitStatus = exitErr.ExitCode()
		return res, nil
	}
	return res, zerr.With(zerr.Wrap(err, domain.ErrProcessStartFailed.Error()), "command", name)
}

// logWriter forwards complete lines of child output to the debug log.
type logWriter struct {
	logger ports.Logger
	prefix string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	w.logger.Debug(w.prefix + strings.TrimSuffix(string(line), "\r"))
}

// allowListedEnvVars are the variables inherited from the invoking shell.
// Compilers need little more than PATH and a temp dir; keeping the rest out
// makes command lines behave the same across machines.
var allowListedEnvVars = map[string]struct{}{
	"HOME":    {},
	"USER":    {},
	"PATH":    {},
	"TMPDIR":  {},
	"LANG":    {},
	"LC_ALL":  {},
	"SDKROOT": {},
}

// resolveEnvironment keeps the allow-listed system variables and applies overrides on top.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}
	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
