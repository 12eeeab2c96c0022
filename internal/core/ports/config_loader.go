package ports

import "go.trai.ch/busy/internal/core/domain"

// ConfigLoader defines the interface for loading the build description.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds busy.yaml starting at path and returns the parsed project.
	// path may name the file itself or any directory below the project root.
	Load(path string) (*domain.Project, error)
}
