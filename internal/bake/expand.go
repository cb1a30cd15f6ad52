// SPDX-License-Identifier: MPL-2.0

package bake

import (
	"fmt"
	"maps"
	"slices"

	"kiln-cli/pkg/kilnfile"
	"kiln-cli/pkg/types"
)

// Expand returns a deep copy of the recipe with every ${NAME} placeholder
// replaced by its value from vals.
//
// Passing resolved arg values yields the concrete recipe used by apply and
// verify. Passing Kilnfile.SymbolicArgs() yields an identity expansion whose
// plan still carries placeholders, which is what Dockerfile rendering wants.
// Shell lines (packages.setup, shell.rc) are copied verbatim either way; the
// shell that runs them owns their ${...} references.
func Expand(kf *kilnfile.Kilnfile, vals map[kilnfile.ArgName]string) (*kilnfile.Kilnfile, error) {
	out := *kf

	image, err := expandString(string(kf.Base.Image), vals, "base.image")
	if err != nil {
		return nil, err
	}
	out.Base = kilnfile.Base{Image: kilnfile.ImageRef(image)}

	out.Labels = maps.Clone(kf.Labels)
	out.Args = slices.Clone(kf.Args)

	if kf.Packages != nil {
		pkgs := *kf.Packages
		pkgs.System = slices.Clone(kf.Packages.System)
		for i := range pkgs.System {
			pkgs.System[i].Packages = slices.Clone(kf.Packages.System[i].Packages)
		}
		pkgs.Python = slices.Clone(kf.Packages.Python)
		pkgs.Setup = slices.Clone(kf.Packages.Setup)
		out.Packages = &pkgs
	}

	out.Deps = slices.Clone(kf.Deps)
	for i := range out.Deps {
		field := fmt.Sprintf("deps[%d]", i)
		repo, err := expandString(string(kf.Deps[i].Repo), vals, field+".repo")
		if err != nil {
			return nil, err
		}
		path, err := expandString(string(kf.Deps[i].Path), vals, field+".path")
		if err != nil {
			return nil, err
		}
		out.Deps[i].Repo = kilnfile.RepoURL(repo)
		out.Deps[i].Path = types.FilesystemPath(path)
	}

	if kf.Env != nil {
		env := kilnfile.Env{}
		if kf.Env.Path != nil {
			sp := kilnfile.SearchPath{Name: kf.Env.Path.Name}
			for i, entry := range kf.Env.Path.Append {
				expanded, err := expandString(entry, vals, fmt.Sprintf("env.path.append[%d]", i))
				if err != nil {
					return nil, err
				}
				sp.Append = append(sp.Append, expanded)
			}
			env.Path = &sp
		}
		if kf.Env.Vars != nil {
			env.Vars = make(map[kilnfile.EnvVarName]string, len(kf.Env.Vars))
			for name, value := range kf.Env.Vars {
				expanded, err := expandString(value, vals, "env.vars."+string(name))
				if err != nil {
					return nil, err
				}
				env.Vars[name] = expanded
			}
		}
		out.Env = &env
	}

	if kf.Account != nil {
		acct := *kf.Account
		for _, f := range []struct {
			name string
			dst  *string
		}{
			{"account.gid", &acct.GID},
			{"account.group", &acct.Group},
			{"account.uid", &acct.UID},
			{"account.user", &acct.User},
			{"account.password", &acct.Password},
			{"account.root_password", &acct.RootPassword},
			{"account.admin_group", &acct.AdminGroup},
		} {
			expanded, err := expandString(*f.dst, vals, f.name)
			if err != nil {
				return nil, err
			}
			*f.dst = expanded
		}
		workspace, err := expandString(string(kf.Account.Workspace), vals, "account.workspace")
		if err != nil {
			return nil, err
		}
		acct.Workspace = types.FilesystemPath(workspace)
		home, err := expandString(string(kf.Account.Home), vals, "account.home")
		if err != nil {
			return nil, err
		}
		acct.Home = types.FilesystemPath(home)
		out.Account = &acct
	}

	if kf.Shell != nil {
		shell := *kf.Shell
		shell.RC = slices.Clone(kf.Shell.RC)
		rcFile, err := expandString(string(kf.Shell.RCFile), vals, "shell.rc_file")
		if err != nil {
			return nil, err
		}
		shell.RCFile = types.FilesystemPath(rcFile)
		out.Shell = &shell
	}

	out.Ports = slices.Clone(kf.Ports)
	for i := range out.Ports {
		expanded, err := expandString(string(kf.Ports[i]), vals, fmt.Sprintf("ports[%d]", i))
		if err != nil {
			return nil, err
		}
		out.Ports[i] = kilnfile.PortSpec(expanded)
	}

	workdir, err := expandString(string(kf.WorkDir), vals, "workdir")
	if err != nil {
		return nil, err
	}
	out.WorkDir = types.FilesystemPath(workdir)

	return &out, nil
}

func expandString(s string, vals map[kilnfile.ArgName]string, field string) (string, error) {
	if s == "" {
		return "", nil
	}
	expanded, err := kilnfile.ExpandPlaceholders(s, vals)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return expanded, nil
}
