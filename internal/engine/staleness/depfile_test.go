package staleness_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/busy/internal/engine/staleness"
)

func TestParseDepfile(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "single line",
			in:   "obj/a.o: src/a.cpp include/a.h\n",
			want: []string{"src/a.cpp", "include/a.h"},
		},
		{
			name: "continuations",
			in:   "obj/a.o: src/a.cpp \\\n  include/a.h \\\n  /usr/include/stdio.h\n",
			want: []string{"src/a.cpp", "include/a.h", "/usr/include/stdio.h"},
		},
		{
			name: "escaped spaces",
			in:   "a.o: my\\ dir/a.c my\\ dir/a.h\n",
			want: []string{"my dir/a.c", "my dir/a.h"},
		},
		{
			name: "phony targets and duplicates",
			in:   "a.o: a.c a.h\n\na.h:\nb.h: a.h\n",
			want: []string{"a.c", "a.h"},
		},
		{
			name: "windows drive letters",
			in:   "C:/obj/a.o: C:/src/a.c\r\n",
			want: []string{"C:/src/a.c"},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := staleness.ParseDepfile([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDepfile_Malformed(t *testing.T) {
	_, err := staleness.ParseDepfile([]byte("no separator here\n"))
	require.ErrorContains(t, err, domain.ErrDepfileParseFailed.Error())
}

func TestTable(t *testing.T) {
	table := staleness.NewTable(map[string]domain.FileStat{
		"src/../src/a.c": {},
	})
	_, ok := table.Get("src/a.c")
	assert.True(t, ok)

	table.RecordCompile("src/b.c", time.Unix(100, 0), []string{"b.h"}, 7)
	fs, ok := table.Get("src/b.c")
	require.True(t, ok)
	assert.Equal(t, []string{"b.h"}, fs.DependencyPaths())
	assert.Equal(t, uint64(7), fs.Compile.CommandHash)

	snap := table.Snapshot()
	assert.Len(t, snap, 2)

	table.Forget("src/a.c")
	assert.Equal(t, 1, table.Len())
	assert.Len(t, snap, 2)
}
