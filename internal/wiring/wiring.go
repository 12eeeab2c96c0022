// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/busy/internal/adapters/cas"
	_ "go.trai.ch/busy/internal/adapters/config"
	_ "go.trai.ch/busy/internal/adapters/fs"
	_ "go.trai.ch/busy/internal/adapters/logger"
	_ "go.trai.ch/busy/internal/adapters/shell"
	_ "go.trai.ch/busy/internal/adapters/telemetry"
	_ "go.trai.ch/busy/internal/adapters/toolchain"
	_ "go.trai.ch/busy/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/busy/internal/app"
	_ "go.trai.ch/busy/internal/engine/scheduler"
)
