// Package progrock records build jobs as progrock vertices.
package progrock

import (
	"context"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/busy/internal/core/ports"
)

// Recorder implements ports.Telemetry using vito/progrock.
// Every job becomes one vertex on the tape; job names are unique within a build.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder

	mu     sync.Mutex
	closed bool
}

// New creates a new Recorder writing to an in-memory tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Record starts a vertex for the named job and stores it in the returned context.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	v := &Vertex{vertex: r.rec.Vertex(digest.FromString(name), name)}
	return ports.ContextWithVertex(ctx, v), v
}

// Close flushes the recording session. Closing twice is a no-op.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
