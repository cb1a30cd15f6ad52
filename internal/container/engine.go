// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
)

const (
	// EngineTypeDocker selects the Docker CLI engine.
	EngineTypeDocker EngineType = "docker"
	// EngineTypePodman selects the Podman CLI engine.
	EngineTypePodman EngineType = "podman"
	// EngineTypeAuto selects whichever engine is available, Docker first.
	EngineTypeAuto EngineType = "auto"
)

var (
	// ErrInvalidEngineType is the sentinel error wrapped by InvalidEngineTypeError.
	ErrInvalidEngineType = errors.New("invalid container engine type")

	// ErrEngineNotAvailable is the sentinel error wrapped by EngineNotAvailableError.
	ErrEngineNotAvailable = errors.New("container engine not available")
)

type (
	// Engine is the surface kiln needs from a container engine: building
	// recipe images and managing the ones it built.
	Engine interface {
		// Name returns the engine name (docker or podman).
		Name() string
		// Available checks if the engine is installed and responding.
		Available() bool
		// Version returns the engine version.
		Version(ctx context.Context) (string, error)
		// Build builds an image from a rendered build context.
		Build(ctx context.Context, opts BuildOptions) error
		// ImageExists checks if an image is present locally.
		ImageExists(ctx context.Context, image ImageTag) (bool, error)
		// InspectImage returns the engine's description of an image.
		InspectImage(ctx context.Context, image ImageTag) (string, error)
		// RemoveImage removes a local image.
		RemoveImage(ctx context.Context, image ImageTag, force bool) error
	}

	// EngineType identifies a container engine preference.
	EngineType string

	// InvalidEngineTypeError is returned when an EngineType is not a recognized engine.
	InvalidEngineTypeError struct {
		Value EngineType
	}

	// EngineNotAvailableError is returned when no usable engine was found.
	EngineNotAvailableError struct {
		Engine EngineType
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidEngineTypeError) Error() string {
	return fmt.Sprintf("invalid container engine type %q (valid: docker, podman, auto)", e.Value)
}

// Unwrap returns ErrInvalidEngineType so callers can use errors.Is for programmatic detection.
func (e *InvalidEngineTypeError) Unwrap() error { return ErrInvalidEngineType }

// Error implements the error interface.
func (e *EngineNotAvailableError) Error() string {
	return fmt.Sprintf("container engine %q is not available: %s", e.Engine, e.Reason)
}

// Unwrap returns ErrEngineNotAvailable so callers can use errors.Is for programmatic detection.
func (e *EngineNotAvailableError) Unwrap() error { return ErrEngineNotAvailable }

// Validate returns an error if the EngineType is not one of the defined engines.
// The zero value ("") is valid and means auto.
func (t EngineType) Validate() error {
	switch t {
	case EngineTypeDocker, EngineTypePodman, EngineTypeAuto, "":
		return nil
	default:
		return &InvalidEngineTypeError{Value: t}
	}
}

// String returns the string representation of the EngineType.
func (t EngineType) String() string { return string(t) }

// NewEngine creates the preferred container engine, falling back to the
// other CLI engine when the preferred one is not available.
func NewEngine(preferred EngineType, opts ...BaseCLIEngineOption) (Engine, error) {
	if err := preferred.Validate(); err != nil {
		return nil, err
	}

	switch preferred {
	case EngineTypeDocker:
		return pickEngine(preferred, NewDockerEngine(opts...), NewPodmanEngine(opts...))
	case EngineTypePodman:
		return pickEngine(preferred, NewPodmanEngine(opts...), NewDockerEngine(opts...))
	default:
		return pickEngine(EngineTypeAuto, NewDockerEngine(opts...), NewPodmanEngine(opts...))
	}
}

func pickEngine(preferred EngineType, candidates ...Engine) (Engine, error) {
	for _, engine := range candidates {
		if engine.Available() {
			return engine, nil
		}
	}
	return nil, &EngineNotAvailableError{
		Engine: preferred,
		Reason: "neither docker nor podman is installed and responding",
	}
}
