// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// EngineDocker builds images with Docker.
	EngineDocker Engine = "docker"
	// EnginePodman builds images with Podman.
	EnginePodman Engine = "podman"
	// EngineAuto probes for an installed engine, Docker first.
	EngineAuto Engine = "auto"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidEngine is returned when an Engine value is not recognized.
	ErrInvalidEngine = errors.New("invalid engine")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidWorkspaceRoot is returned when a WorkspaceRootPath value is whitespace-only.
	ErrInvalidWorkspaceRoot = errors.New("invalid workspace root")
	// ErrInvalidRegistryHost is returned when a RegistryHost value is whitespace-only.
	ErrInvalidRegistryHost = errors.New("invalid registry host")
	// ErrInvalidContextDir is returned when a ContextDirPath value is whitespace-only.
	ErrInvalidContextDir = errors.New("invalid context dir")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidBuildConfig is the sentinel error wrapped by InvalidBuildConfigError.
	ErrInvalidBuildConfig = errors.New("invalid build config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Engine specifies which container engine builds recipe images.
	// Defined locally to avoid coupling config to internal/container;
	// the command layer casts to container.EngineType at the boundary.
	Engine string

	// InvalidEngineError is returned when an Engine value is not recognized.
	// It wraps ErrInvalidEngine for errors.Is() compatibility.
	InvalidEngineError struct {
		Value Engine
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// WorkspaceRootPath represents the directory treated as the workspace root
	// when locating recipes. The zero value ("") is valid and means "use the
	// current working directory". Non-zero values must not be whitespace-only.
	WorkspaceRootPath string

	// InvalidWorkspaceRootError is returned when a WorkspaceRootPath value is
	// non-empty but whitespace-only.
	InvalidWorkspaceRootError struct {
		Value WorkspaceRootPath
	}

	// RegistryHost represents a registry prefix applied to unqualified image
	// tags. The zero value ("") is valid and means "no prefix". Non-zero
	// values must not be whitespace-only.
	RegistryHost string

	// InvalidRegistryHostError is returned when a RegistryHost value is
	// non-empty but whitespace-only.
	InvalidRegistryHostError struct {
		Value RegistryHost
	}

	// ContextDirPath represents the build context directory passed to the
	// engine. The zero value ("") is valid and means "use the directory
	// containing the recipe". Non-zero values must not be whitespace-only.
	ContextDirPath string

	// InvalidContextDirError is returned when a ContextDirPath value is
	// non-empty but whitespace-only.
	InvalidContextDirError struct {
		Value ContextDirPath
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidBuildConfigError is returned when a BuildConfig has invalid fields.
	// It wraps ErrInvalidBuildConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidBuildConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Engine specifies whether to build with "docker", "podman" or "auto"
		Engine Engine `json:"engine" mapstructure:"engine"`
		// WorkspaceRoot overrides the directory recipes are located from
		WorkspaceRoot WorkspaceRootPath `json:"workspace_root" mapstructure:"workspace_root"`
		// DefaultRegistry prefixes unqualified image tags
		DefaultRegistry RegistryHost `json:"default_registry" mapstructure:"default_registry"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Build configures image build behavior
		Build BuildConfig `json:"build" mapstructure:"build"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// BuildConfig configures image build behavior.
	BuildConfig struct {
		// NoCache skips the engine layer cache on every build
		NoCache bool `json:"no_cache" mapstructure:"no_cache"`
		// ContextDir overrides the build context directory
		ContextDir ContextDirPath `json:"context_dir" mapstructure:"context_dir"`
	}
)

// String returns the string representation of the Engine.
func (e Engine) String() string { return string(e) }

// IsValid returns whether the Engine is one of the defined engine values,
// and a list of validation errors if it is not.
func (e Engine) IsValid() (bool, []error) {
	switch e {
	case EngineDocker, EnginePodman, EngineAuto:
		return true, nil
	default:
		return false, []error{&InvalidEngineError{Value: e}}
	}
}

// Error implements the error interface for InvalidEngineError.
func (e *InvalidEngineError) Error() string {
	return fmt.Sprintf("invalid engine %q (valid: docker, podman, auto)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidEngineError) Unwrap() error { return ErrInvalidEngine }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the WorkspaceRootPath.
func (p WorkspaceRootPath) String() string { return string(p) }

// IsValid returns whether the WorkspaceRootPath is valid.
// The zero value ("") is valid (means "use the current working directory").
// Non-zero values must not be whitespace-only.
func (p WorkspaceRootPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidWorkspaceRootError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidWorkspaceRootError.
func (e *InvalidWorkspaceRootError) Error() string {
	return fmt.Sprintf("invalid workspace root %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidWorkspaceRoot for errors.Is() compatibility.
func (e *InvalidWorkspaceRootError) Unwrap() error { return ErrInvalidWorkspaceRoot }

// String returns the string representation of the RegistryHost.
func (h RegistryHost) String() string { return string(h) }

// IsValid returns whether the RegistryHost is valid.
// The zero value ("") is valid (means "no registry prefix").
// Non-zero values must not be whitespace-only.
func (h RegistryHost) IsValid() (bool, []error) {
	if h == "" {
		return true, nil
	}
	if strings.TrimSpace(string(h)) == "" {
		return false, []error{&InvalidRegistryHostError{Value: h}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRegistryHostError.
func (e *InvalidRegistryHostError) Error() string {
	return fmt.Sprintf("invalid registry host %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidRegistryHost for errors.Is() compatibility.
func (e *InvalidRegistryHostError) Unwrap() error { return ErrInvalidRegistryHost }

// String returns the string representation of the ContextDirPath.
func (p ContextDirPath) String() string { return string(p) }

// IsValid returns whether the ContextDirPath is valid.
// The zero value ("") is valid (means "use the recipe directory").
// Non-zero values must not be whitespace-only.
func (p ContextDirPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidContextDirError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidContextDirError.
func (e *InvalidContextDirError) Error() string {
	return fmt.Sprintf("invalid context dir %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidContextDir for errors.Is() compatibility.
func (e *InvalidContextDirError) Unwrap() error { return ErrInvalidContextDir }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the BuildConfig has valid fields.
// It delegates to ContextDir.IsValid(); bool fields need no validation.
func (c BuildConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ContextDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidBuildConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidBuildConfigError.
func (e *InvalidBuildConfigError) Error() string {
	return fmt.Sprintf("invalid build config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidBuildConfig for errors.Is() compatibility.
func (e *InvalidBuildConfigError) Unwrap() error { return ErrInvalidBuildConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to Engine.IsValid(), WorkspaceRoot.IsValid(),
// DefaultRegistry.IsValid(), UI.IsValid(), and Build.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Engine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.WorkspaceRoot.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.DefaultRegistry.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Build.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine:          EngineAuto,
		WorkspaceRoot:   "",
		DefaultRegistry: "",
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Build: BuildConfig{
			NoCache:    false,
			ContextDir: "",
		},
	}
}
