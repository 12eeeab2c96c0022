package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/busy/internal/adapters/logger"
	"go.trai.ch/busy/internal/core/ports"
)

// NodeID is the unique identifier for the process runner Graft node.
const NodeID graft.ID = "adapter.process"

func init() {
	graft.Register(graft.Node[ports.Process]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Process, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			// Diagnostics end up in failure reports; keep them free of locale quoting.
			return NewProcess(log).WithEnv(map[string]string{"LC_ALL": "C"}), nil
		},
	})
}
