// SPDX-License-Identifier: MPL-2.0

// Package bake expands a parsed kilnfile into an ordered provisioning plan.
//
// The plan is the single source of step order for every consumer: the
// renderer turns it into a Dockerfile, the applier executes it against a
// live filesystem, and tests assert on it directly. Building a plan is
// deterministic: the same recipe and arg values always yield the same
// steps in the same order, with no conditionals, loops, or retries.
package bake

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"slices"

	"kiln-cli/pkg/kilnfile"
	"kiln-cli/pkg/types"
)

// ErrUnpinned is returned when a dependency reaches planning without an
// exact commit, either inline or from the lock file.
var ErrUnpinned = errors.New("dependency has no pinned commit")

// Plan is the ordered step list for one recipe, plus the image metadata
// that is not itself a step.
type Plan struct {
	Description string
	Labels      map[string]string
	Image       string
	Args        []kilnfile.Arg
	Steps       []Step
}

// New builds the provisioning plan for a recipe. The recipe is normally the
// output of Expand; a symbolic expansion produces a plan whose values still
// carry ${NAME} placeholders.
func New(kf *kilnfile.Kilnfile) (*Plan, error) {
	p := &Plan{
		Description: string(kf.Description),
		Labels:      kf.Labels,
		Image:       string(kf.Base.Image),
		Args:        kf.Args,
	}
	p.add(Step{Kind: KindBase, Desc: "base image " + p.Image})

	p.planPackages(kf.Packages)
	if err := p.planDeps(kf.Deps); err != nil {
		return nil, err
	}
	p.planEnv(kf.Env)
	if err := p.planAccount(kf.Account); err != nil {
		return nil, err
	}
	p.planShell(kf)

	for _, port := range kf.Ports {
		if err := port.Validate(); err != nil {
			return nil, err
		}
		p.add(Step{Kind: KindExpose, Desc: "expose port " + string(port), Port: string(port)})
	}
	if kf.WorkDir != "" {
		p.add(Step{Kind: KindWorkdir, Desc: "set workdir " + string(kf.WorkDir), Dir: string(kf.WorkDir)})
	}
	return p, nil
}

func (p *Plan) add(s Step) { p.Steps = append(p.Steps, s) }

func (p *Plan) planPackages(pkgs *kilnfile.Packages) {
	if pkgs.IsEmpty() {
		return
	}
	if pkgs.Update && (pkgs.Upgrade || len(pkgs.System) > 0) {
		p.add(Step{
			Kind: KindPackageUpdate,
			Desc: "refresh package index",
			Argv: []string{"apt-get", "update"},
		})
	}
	if pkgs.Upgrade {
		p.add(Step{
			Kind: KindPackageUpgrade,
			Desc: "upgrade preinstalled packages",
			Argv: []string{"apt-get", "-y", "upgrade"},
		})
	}
	for i, group := range pkgs.System {
		argv := []string{"apt-get", "install", "-y"}
		for _, name := range group.Packages {
			argv = append(argv, string(name))
		}
		p.add(Step{
			Kind: KindPackageInstall,
			Desc: fmt.Sprintf("install system packages (group %d of %d)", i+1, len(pkgs.System)),
			Argv: argv,
		})
	}
	for _, name := range pkgs.Python {
		p.add(Step{
			Kind: KindPythonInstall,
			Desc: "install python package " + string(name),
			Argv: []string{"pip", "install", string(name)},
		})
	}
	for i, line := range pkgs.Setup {
		p.add(Step{
			Kind:  KindSetup,
			Desc:  fmt.Sprintf("run setup line %d of %d", i+1, len(pkgs.Setup)),
			Shell: string(line),
		})
	}
}

// planDeps emits a clone step followed by a checkout step per dependency,
// in declared order. The pair order is load bearing; the order across
// dependencies is kept stable so runs are reproducible.
func (p *Plan) planDeps(deps []kilnfile.Dependency) error {
	for i := range deps {
		d := &deps[i]
		if d.Commit == "" {
			return fmt.Errorf("dependency %s: %w; pin one inline or run `kiln lock`", d.Name, ErrUnpinned)
		}
		p.add(Step{
			Kind: KindClone,
			Desc: fmt.Sprintf("clone %s into %s", d.Name, d.Path),
			Argv: []string{"git", "clone", string(d.Repo), string(d.Path)},
			Dep:  d.Name,
		})
		p.add(Step{
			Kind: KindCheckout,
			Desc: fmt.Sprintf("pin %s to %s", d.Name, d.Commit.Short()),
			Argv: []string{"git", "-C", string(d.Path), "checkout", string(d.Commit)},
			Dep:  d.Name,
		})
	}
	return nil
}

func (p *Plan) planEnv(env *kilnfile.Env) {
	if env == nil {
		return
	}
	if env.Path != nil {
		p.add(Step{
			Kind:  KindEnvSet,
			Desc:  "set " + string(env.Path.Name),
			Name:  string(env.Path.Name),
			Value: env.Path.Value(),
			File:  EnvFile,
		})
	}
	for _, name := range slices.Sorted(maps.Keys(env.Vars)) {
		p.add(Step{
			Kind:  KindEnvSet,
			Desc:  "set " + string(name),
			Name:  string(name),
			Value: env.Vars[name],
			File:  EnvFile,
		})
	}
}

func (p *Plan) planAccount(acct *kilnfile.Account) error {
	if acct == nil {
		return nil
	}
	for _, f := range []struct {
		name, value string
	}{
		{"gid", acct.GID},
		{"group", acct.Group},
		{"uid", acct.UID},
		{"user", acct.User},
	} {
		if f.value == "" {
			return fmt.Errorf("account %s expanded to an empty value", f.name)
		}
	}

	home := acct.HomePath()
	p.add(Step{
		Kind: KindGroup,
		Desc: "create group " + acct.Group,
		Argv: []string{"groupadd", "-g", acct.GID, acct.Group},
	})

	userArgv := []string{"useradd", "-m", "-u", acct.UID, "-g", acct.Group, "-d", string(home)}
	if acct.Shell != "" {
		userArgv = append(userArgv, "-s", acct.Shell)
	}
	userArgv = append(userArgv, acct.User)
	p.add(Step{
		Kind: KindUser,
		Desc: "create user " + acct.User,
		Argv: userArgv,
		User: acct.User,
	})

	p.add(Step{
		Kind: KindAdminGroup,
		Desc: fmt.Sprintf("add %s to %s", acct.User, acct.AdminGroup),
		Argv: []string{"usermod", "-aG", acct.AdminGroup, acct.User},
	})

	if acct.Password != "" {
		p.add(passwordStep(acct.User, acct.Password))
	}
	if acct.RootPassword != "" {
		p.add(passwordStep("root", acct.RootPassword))
	}

	link := path.Join(string(home), path.Base(string(acct.Workspace)))
	p.add(Step{
		Kind:   KindSymlink,
		Desc:   fmt.Sprintf("link %s into %s", acct.Workspace, home),
		Argv:   []string{"ln", "-s", string(acct.Workspace), link},
		Target: string(acct.Workspace),
		Link:   link,
	})

	p.add(Step{
		Kind: KindChown,
		Desc: fmt.Sprintf("hand %s to %s", home, acct.User),
		Argv: []string{"chown", "-R", acct.User + ":" + acct.Group, string(home)},
	})

	p.add(Step{
		Kind: KindSwitchUser,
		Desc: "switch to user " + acct.User,
		User: acct.User,
	})
	return nil
}

// passwordStep carries both execution forms: Argv+Stdin for direct
// application (the value never crosses a shell) and Shell for rendering,
// where the placeholders survive as ARG references.
func passwordStep(user, password string) Step {
	return Step{
		Kind:  KindPassword,
		Desc:  "set password for " + user,
		Argv:  []string{"chpasswd"},
		Stdin: user + ":" + password + "\n",
		Shell: fmt.Sprintf(`echo "%s:%s" | chpasswd`, user, password),
		User:  user,
	}
}

func (p *Plan) planShell(kf *kilnfile.Kilnfile) {
	if kf.Shell == nil || len(kf.Shell.RC) == 0 {
		return
	}
	home := types.FilesystemPath("/root")
	if kf.Account != nil {
		home = kf.Account.HomePath()
	}
	rcFile := kf.Shell.RCFilePath(home)
	for i, line := range kf.Shell.RC {
		p.add(Step{
			Kind: KindRCAppend,
			Desc: fmt.Sprintf("append rc line %d of %d to %s", i+1, len(kf.Shell.RC), rcFile),
			File: string(rcFile),
			Line: string(line),
		})
	}
}
