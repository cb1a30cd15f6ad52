// SPDX-License-Identifier: MPL-2.0

package bake

import (
	"kiln-cli/pkg/kilnfile"
)

// StepKind discriminates plan steps. Consumers switch on it: the renderer
// maps kinds to Dockerfile directives, the applier maps them to process
// executions or file edits.
type StepKind string

const (
	// KindBase selects the starting image. First step of every plan.
	KindBase StepKind = "base"

	// KindPackageUpdate refreshes the system package index.
	KindPackageUpdate StepKind = "package-update"

	// KindPackageUpgrade upgrades preinstalled system packages.
	KindPackageUpgrade StepKind = "package-upgrade"

	// KindPackageInstall installs one group of system packages.
	KindPackageInstall StepKind = "package-install"

	// KindPythonInstall installs one Python package.
	KindPythonInstall StepKind = "python-install"

	// KindSetup runs one raw shell line after package installation.
	KindSetup StepKind = "setup"

	// KindClone clones one dependency repository into its path.
	KindClone StepKind = "clone"

	// KindCheckout pins a cloned dependency to its exact commit.
	KindCheckout StepKind = "checkout"

	// KindEnvSet sets one environment variable on the image.
	KindEnvSet StepKind = "env-set"

	// KindGroup creates the account's primary group.
	KindGroup StepKind = "group"

	// KindUser creates the account.
	KindUser StepKind = "user"

	// KindAdminGroup grants the account admin group membership.
	KindAdminGroup StepKind = "admin-group"

	// KindPassword sets a password, for the account or for root.
	KindPassword StepKind = "password"

	// KindSymlink links the workspace root into the account's home.
	KindSymlink StepKind = "symlink"

	// KindChown hands the account's home over to the account.
	KindChown StepKind = "chown"

	// KindSwitchUser switches the active account for all later steps.
	KindSwitchUser StepKind = "switch-user"

	// KindRCAppend appends one line to the shell startup file.
	KindRCAppend StepKind = "rc-append"

	// KindExpose declares one exposed port. Metadata only.
	KindExpose StepKind = "expose"

	// KindWorkdir sets the final working directory.
	KindWorkdir StepKind = "workdir"
)

// Step is one entry of a provisioning plan. Which fields are populated
// depends on Kind; Desc is always set and stable for a given recipe.
type Step struct {
	Kind StepKind

	// Desc is a one line description used in progress output and in
	// "aborted at step N" failures. Never contains secret values.
	Desc string

	// Argv is the command for steps that execute a process directly.
	Argv []string

	// Shell is the raw line for steps that run through a shell, and the
	// rendered RUN form for steps that have one.
	Shell string

	// Stdin is fed to Argv's process when non-empty.
	Stdin string

	// Name and Value describe an environment variable for env-set steps.
	Name  string
	Value string

	// File and Line describe an rc-append step.
	File string
	Line string

	// Target and Link describe a symlink step.
	Target string
	Link   string

	// Port is the exposed port for expose steps, possibly still a
	// placeholder in symbolic plans.
	Port string

	// Dir is the directory for workdir steps.
	Dir string

	// User names the affected account for user, password, and switch-user
	// steps.
	User string

	// Dep names the dependency for clone and checkout steps.
	Dep kilnfile.DependencyName
}
