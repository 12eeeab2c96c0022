package staleness_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/busy/internal/engine/staleness"
)

type fixture struct {
	dir    string
	source string
	header string
	object string
	base   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:    dir,
		source: filepath.Join(dir, "a.cpp"),
		header: filepath.Join(dir, "h.h"),
		object: filepath.Join(dir, "a.cpp.o"),
		base:   time.Now().Add(-time.Hour).Truncate(time.Second),
	}
	f.write(t, f.source, f.base)
	f.write(t, f.header, f.base)
	f.write(t, f.object, f.base.Add(10*time.Second))
	return f
}

func (f *fixture) write(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func (f *fixture) touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func (f *fixture) table() *staleness.Table {
	table := staleness.NewTable(nil)
	table.RecordCompile(f.object, f.base.Add(10*time.Second), []string{f.source, f.header}, 42)
	return table
}

func TestOracle_NeedsCompile(t *testing.T) {
	t.Run("unchanged is up to date", func(t *testing.T) {
		f := newFixture(t)
		o := staleness.NewOracle(f.table(), false)
		assert.Equal(t, staleness.UpToDate, o.NeedsCompile(f.source, f.object, 42))
	})

	t.Run("touched header", func(t *testing.T) {
		f := newFixture(t)
		f.touch(t, f.header, f.base.Add(11*time.Second))
		o := staleness.NewOracle(f.table(), false)
		assert.Equal(t, staleness.ReasonDepNewer, o.NeedsCompile(f.source, f.object, 42))
	})

	t.Run("header with equal timestamp is not newer", func(t *testing.T) {
		f := newFixture(t)
		f.touch(t, f.header, f.base.Add(10*time.Second))
		o := staleness.NewOracle(f.table(), false)
		assert.False(t, o.NeedsCompile(f.source, f.object, 42).Stale())
	})

	t.Run("deleted header", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.Remove(f.header))
		o := staleness.NewOracle(f.table(), false)
		assert.Equal(t, staleness.ReasonDepMissing, o.NeedsCompile(f.source, f.object, 42))
	})

	t.Run("deleted object", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.Remove(f.object))
		o := staleness.NewOracle(f.table(), false)
		assert.Equal(t, staleness.ReasonNoOutput, o.NeedsCompile(f.source, f.object, 42))
	})

	t.Run("no record", func(t *testing.T) {
		f := newFixture(t)
		o := staleness.NewOracle(staleness.NewTable(nil), false)
		assert.Equal(t, staleness.ReasonNoRecord, o.NeedsCompile(f.source, f.object, 42))
	})

	t.Run("command changed", func(t *testing.T) {
		f := newFixture(t)
		o := staleness.NewOracle(f.table(), false)
		assert.Equal(t, staleness.ReasonCommand, o.NeedsCompile(f.source, f.object, 43))
	})

	t.Run("force", func(t *testing.T) {
		f := newFixture(t)
		o := staleness.NewOracle(f.table(), true)
		assert.Equal(t, staleness.ReasonForced, o.NeedsCompile(f.source, f.object, 42))
	})

	t.Run("other mode keeps its own record", func(t *testing.T) {
		f := newFixture(t)
		table := f.table()
		release := filepath.Join(f.dir, "release", "a.cpp.o")
		require.NoError(t, os.MkdirAll(filepath.Dir(release), 0o750))
		f.write(t, release, f.base.Add(10*time.Second))
		table.RecordCompile(release, f.base.Add(10*time.Second), []string{f.source}, 99)
		o := staleness.NewOracle(table, false)

		assert.Equal(t, staleness.UpToDate, o.NeedsCompile(f.source, f.object, 42))
		assert.Equal(t, staleness.UpToDate, o.NeedsCompile(f.source, release, 99))
	})
}

func TestOracle_NeedsCompileDeclined(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.object))
	table := staleness.NewTable(nil)
	table.RecordNotCompilable(f.object, f.base.Add(10*time.Second), 42)
	o := staleness.NewOracle(table, false)

	assert.True(t, table.NotCompilable(f.object))
	assert.Equal(t, staleness.UpToDate, o.NeedsCompile(f.source, f.object, 42))
	assert.Equal(t, staleness.ReasonCommand, o.NeedsCompile(f.source, f.object, 43))

	f.touch(t, f.source, f.base.Add(20*time.Second))
	assert.Equal(t, staleness.ReasonDepNewer, o.NeedsCompile(f.source, f.object, 42))
}

func TestOracle_NeedsArchive(t *testing.T) {
	f := newFixture(t)
	archive := filepath.Join(f.dir, "lib.a")
	o := staleness.NewOracle(f.table(), false)

	assert.Equal(t, staleness.ReasonNoOutput, o.NeedsArchive(false, archive, []string{f.object}))

	f.write(t, archive, f.base.Add(20*time.Second))
	assert.Equal(t, staleness.UpToDate, o.NeedsArchive(false, archive, []string{f.object}))
	assert.Equal(t, staleness.ReasonInputs, o.NeedsArchive(true, archive, []string{f.object}))

	f.touch(t, f.object, f.base.Add(30*time.Second))
	assert.Equal(t, staleness.ReasonDepNewer, o.NeedsArchive(false, archive, []string{f.object}))
}

func TestOracle_NeedsLink(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "app")
	exe := &domain.BuildTarget{Name: "app", Kind: domain.KindExecutable}
	o := staleness.NewOracle(f.table(), false)

	assert.Equal(t, staleness.ReasonNoOutput, o.NeedsLink(exe, false, false, out, nil))

	f.write(t, out, f.base.Add(20*time.Second))
	assert.Equal(t, staleness.UpToDate, o.NeedsLink(exe, false, false, out, []string{f.object}))
	assert.Equal(t, staleness.ReasonInputs, o.NeedsLink(exe, true, false, out, nil))
	assert.Equal(t, staleness.ReasonDepsChanged, o.NeedsLink(exe, false, true, out, nil))

	hdr := &domain.BuildTarget{Name: "hdr", Kind: domain.KindHeaderOnly}
	assert.Equal(t, staleness.UpToDate, o.NeedsLink(hdr, true, true, "", nil))
}
