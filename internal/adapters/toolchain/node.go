package toolchain

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/busy/internal/adapters/shell"
	"go.trai.ch/busy/internal/core/ports"
)

// NodeID is the unique identifier for the external toolchain Graft node.
const NodeID graft.ID = "adapter.external_toolchain"

func init() {
	graft.Register(graft.Node[ports.ExternalToolchain]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.ExternalToolchain, error) {
			process, err := graft.Dep[ports.Process](ctx)
			if err != nil {
				return nil, err
			}
			return NewBuilder(process), nil
		},
	})
}
