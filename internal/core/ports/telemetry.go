package ports

import (
	"context"
	"io"

	"go.trai.ch/busy/internal/core/domain"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Telemetry records the progress of build jobs.
type Telemetry interface {
	// Record starts a vertex for the named job.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes the recording session.
	Close() error
}

// Vertex is one recorded unit of work.
type Vertex interface {
	// Stdout returns a writer for the job's standard output.
	Stdout() io.Writer
	// Stderr returns a writer for the job's error output.
	Stderr() io.Writer
	// Log writes a leveled message to the vertex.
	Log(level domain.LogLevel, msg string)
	// Complete marks the vertex finished, failed when err is non-nil.
	Complete(err error)
	// Cached marks the vertex as up to date.
	Cached()
}

type vertexKey struct{}

// ContextWithVertex returns a context carrying v.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexKey{}, v)
}

// VertexFromContext returns the vertex stored in ctx, if any.
func VertexFromContext(ctx context.Context) (Vertex, bool) {
	v, ok := ctx.Value(vertexKey{}).(Vertex)
	return v, ok
}
