package ports

import (
	"context"

	"go.trai.ch/busy/internal/core/domain"
)

// ExternalToolchain talks to an out-of-process builder binary.
// Any output on the builder's stderr fails the call, whatever its exit status.
//
//go:generate mockgen -source=external_toolchain.go -destination=mocks/mock_external_toolchain.go -package=mocks
type ExternalToolchain interface {
	// Info lists the languages the builder supports.
	Info(ctx context.Context, tc *domain.Toolchain) (domain.ExternalInfo, error)

	// SetupTranslationSet registers a target's include paths with the builder.
	SetupTranslationSet(ctx context.Context, tc *domain.Toolchain, req domain.TranslationSetRequest) error

	// Compile compiles one source file.
	Compile(ctx context.Context, tc *domain.Toolchain, req domain.ExternalCompileRequest) (domain.ExternalCompileResult, error)

	// Link links one target.
	Link(ctx context.Context, tc *domain.Toolchain, req domain.ExternalLinkRequest) (domain.ExternalLinkResult, error)
}
