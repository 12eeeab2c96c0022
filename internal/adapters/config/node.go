package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/busy/internal/adapters/fs"
	"go.trai.ch/busy/internal/adapters/logger"
	"go.trai.ch/busy/internal/core/ports"
)

// NodeID is the unique identifier for the config loader Graft node.
const NodeID graft.ID = "adapter.config_loader"

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, fs.WalkerNodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			return &Loader{Logger: log, Walker: walker}, nil
		},
	})
}
