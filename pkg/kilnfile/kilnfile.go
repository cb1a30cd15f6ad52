// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"fmt"

	"kiln-cli/pkg/types"
)

// Kilnfile is the decoded recipe model. Field order mirrors build order:
// base, packages, deps, env, account, shell, ports, workdir.
type Kilnfile struct {
	Version     string                `json:"version,omitempty"`
	Description types.DescriptionText `json:"description,omitempty"`
	Labels      map[string]string     `json:"labels,omitempty"`
	Base        Base                  `json:"base"`
	Args        []Arg                 `json:"args,omitempty"`
	Packages    *Packages             `json:"packages,omitempty"`
	Deps        []Dependency          `json:"deps,omitempty"`
	Env         *Env                  `json:"env,omitempty"`
	Account     *Account              `json:"account,omitempty"`
	Shell       *Shell                `json:"shell,omitempty"`
	Ports       []PortSpec            `json:"ports,omitempty"`
	WorkDir     types.FilesystemPath  `json:"workdir,omitempty"`

	// FilePath records where the kilnfile was loaded from. Set by Parse,
	// not part of the schema.
	FilePath string `json:"-"`
}

// Arg returns the declared arg with the given name.
func (k *Kilnfile) Arg(name ArgName) (*Arg, bool) {
	for i := range k.Args {
		if k.Args[i].Name == name {
			return &k.Args[i], true
		}
	}
	return nil, false
}

// ArgNames returns the declared arg names in declaration order.
func (k *Kilnfile) ArgNames() []ArgName {
	names := make([]ArgName, len(k.Args))
	for i, a := range k.Args {
		names[i] = a.Name
	}
	return names
}

// SecretArgNames returns the set of args whose values must never appear in
// rendered output or logs.
func (k *Kilnfile) SecretArgNames() map[ArgName]bool {
	secret := make(map[ArgName]bool)
	for _, a := range k.Args {
		if a.Secret {
			secret[a.Name] = true
		}
	}
	return secret
}

// Dependency returns the declared dependency with the given name.
func (k *Kilnfile) Dependency(name DependencyName) (*Dependency, bool) {
	for i := range k.Deps {
		if k.Deps[i].Name == name {
			return &k.Deps[i], true
		}
	}
	return nil, false
}

// placeholderSources returns every recipe field value that may carry ${NAME}
// placeholders, so references can be checked against declared args. Shell
// lines (packages.setup, shell.rc) are excluded: there ${...} is ordinary
// shell syntax resolved by the executing shell, not by kiln.
func (k *Kilnfile) placeholderSources() []string {
	var sources []string
	sources = append(sources, string(k.Base.Image))
	for _, d := range k.Deps {
		sources = append(sources, string(d.Repo), string(d.Path))
	}
	if k.Env != nil {
		if k.Env.Path != nil {
			sources = append(sources, k.Env.Path.Append...)
		}
		for _, v := range k.Env.Vars {
			sources = append(sources, v)
		}
	}
	if k.Account != nil {
		sources = append(sources,
			k.Account.GID, k.Account.Group, k.Account.UID, k.Account.User,
			k.Account.Password, k.Account.RootPassword,
			string(k.Account.Workspace), string(k.Account.Home))
	}
	if k.Shell != nil {
		sources = append(sources, string(k.Shell.RCFile))
	}
	for _, p := range k.Ports {
		sources = append(sources, string(p))
	}
	sources = append(sources, string(k.WorkDir))
	return sources
}

// Validate checks the whole recipe: every typed field, duplicate
// declarations, and that every ${NAME} reference names a declared arg.
// Parse validates against the CUE schema first, so this catches what the
// schema cannot express.
func (k *Kilnfile) Validate() error {
	if err := k.Base.validate(); err != nil {
		return err
	}

	seenArgs := make(map[ArgName]bool, len(k.Args))
	for i := range k.Args {
		if err := k.Args[i].validate(); err != nil {
			return err
		}
		if seenArgs[k.Args[i].Name] {
			return fmt.Errorf("arg %q declared more than once", k.Args[i].Name)
		}
		seenArgs[k.Args[i].Name] = true
	}

	if k.Packages != nil {
		if err := k.Packages.validate(); err != nil {
			return err
		}
	}

	seenDeps := make(map[DependencyName]bool, len(k.Deps))
	seenPaths := make(map[types.FilesystemPath]bool, len(k.Deps))
	for i := range k.Deps {
		if err := k.Deps[i].validate(); err != nil {
			return err
		}
		if seenDeps[k.Deps[i].Name] {
			return fmt.Errorf("dependency %q declared more than once", k.Deps[i].Name)
		}
		seenDeps[k.Deps[i].Name] = true
		if seenPaths[k.Deps[i].Path] {
			return fmt.Errorf("dependency path %q used more than once", k.Deps[i].Path)
		}
		seenPaths[k.Deps[i].Path] = true
	}

	if k.Env != nil {
		if err := k.Env.validate(); err != nil {
			return err
		}
	}
	if k.Account != nil {
		if err := k.Account.validate(); err != nil {
			return err
		}
	}
	if k.Shell != nil {
		if err := k.Shell.validate(); err != nil {
			return err
		}
	}
	for _, p := range k.Ports {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	if k.WorkDir != "" && !k.WorkDir.IsAbs() {
		return fmt.Errorf("workdir %q must be absolute", k.WorkDir)
	}

	for _, src := range k.placeholderSources() {
		for _, name := range PlaceholderNames(src) {
			if !seenArgs[name] {
				return &UnknownArgError{Name: name}
			}
		}
	}
	return nil
}
