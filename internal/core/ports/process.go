// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/busy/internal/core/domain"
)

// Process spawns external tools.
//
//go:generate go run go.uber.org/mock/mockgen -source=process.go -destination=mocks/mock_process.go -package=mocks
type Process interface {
	// Run executes argv in dir and blocks until the child exits.
	// Stdout and stderr are captured separately and drained concurrently.
	//
	// A non-zero exit status is reported through the result, not as an error.
	// The error is non-nil only when the process could not be started.
	Run(ctx context.Context, argv []string, dir string) (domain.ProcessResult, error)
}
