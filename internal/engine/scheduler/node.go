package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/busy/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/busy/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/busy/internal/adapters/shell"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/busy/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/busy/internal/adapters/toolchain" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/busy/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			toolchain.NodeID,
			cas.NodeID,
			telemetry.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			process, err := graft.Dep[ports.Process](ctx)
			if err != nil {
				return nil, err
			}

			external, err := graft.Dep[ports.ExternalToolchain](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.FileStatStore](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(process, external, store, tel, log), nil
		},
	})
}
