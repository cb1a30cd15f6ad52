// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPackageName is the sentinel error wrapped by InvalidPackageNameError.
var ErrInvalidPackageName = errors.New("invalid package name")

// packageNamePattern accepts apt and pip style package names, including
// version pins such as "torchvision==0.2.2".
var packageNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9+._=-]*$`)

type (
	// PackageName identifies a single system or Python package, optionally
	// carrying an installer-native version pin.
	PackageName string

	// PackageGroup is a set of system packages installed by one installer
	// invocation. Groups run in declared order.
	PackageGroup struct {
		Packages []PackageName `json:"packages"`
	}

	// Packages describes everything installed on top of the base image.
	Packages struct {
		// Update refreshes the package index before installing.
		Update bool `json:"update"`

		// Upgrade upgrades preinstalled packages before installing.
		Upgrade bool `json:"upgrade"`

		// System package groups, one installer invocation per group.
		System []PackageGroup `json:"system,omitempty"`

		// Python packages, one installer invocation each.
		Python []PackageName `json:"python,omitempty"`

		// Setup lines run after all package installation.
		Setup []ShellLine `json:"setup,omitempty"`
	}

	// InvalidPackageNameError provides details about a malformed package name.
	InvalidPackageNameError struct {
		Value string
	}
)

// Error implements the error interface for InvalidPackageNameError.
func (e *InvalidPackageNameError) Error() string {
	return fmt.Sprintf("invalid package name %q", e.Value)
}

// Unwrap returns ErrInvalidPackageName for errors.Is() compatibility.
func (e *InvalidPackageNameError) Unwrap() error { return ErrInvalidPackageName }

// Validate checks that the package name is well formed.
func (n PackageName) Validate() error {
	if !packageNamePattern.MatchString(string(n)) {
		return &InvalidPackageNameError{Value: string(n)}
	}
	return nil
}

func (g *PackageGroup) validate() error {
	if len(g.Packages) == 0 {
		return fmt.Errorf("package group must list at least one package")
	}
	for _, p := range g.Packages {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Packages) validate() error {
	for i := range p.System {
		if err := p.System[i].validate(); err != nil {
			return fmt.Errorf("system group %d: %w", i, err)
		}
	}
	for _, name := range p.Python {
		if err := name.Validate(); err != nil {
			return err
		}
	}
	for _, line := range p.Setup {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}
	return nil
}

// IsEmpty reports whether nothing would be installed or run.
func (p *Packages) IsEmpty() bool {
	return p == nil || (len(p.System) == 0 && len(p.Python) == 0 && len(p.Setup) == 0 && !p.Upgrade)
}
