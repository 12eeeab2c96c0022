package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/busy/internal/core/ports"
)

// NodeID is the unique identifier for the FileStat store Graft node.
const NodeID graft.ID = "adapter.filestat_store"

func init() {
	graft.Register(graft.Node[ports.FileStatStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.FileStatStore, error) {
			return NewStore(), nil
		},
	})
}
