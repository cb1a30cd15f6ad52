// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// GenerateCUE generates CUE text from a Kilnfile struct. This is what
// `kiln init` writes out as a starting recipe.
func GenerateCUE(kf *Kilnfile) string {
	var sb strings.Builder

	sb.WriteString("// Kilnfile - development container recipe for kiln\n")
	sb.WriteString("// See https://github.com/kiln-cli/kiln for documentation\n\n")

	if kf.Version != "" {
		fmt.Fprintf(&sb, "version: %q\n", kf.Version)
	}
	if kf.Description != "" {
		fmt.Fprintf(&sb, "description: %q\n", kf.Description)
	}
	if len(kf.Labels) > 0 {
		sb.WriteString("labels: {\n")
		for _, k := range slices.Sorted(maps.Keys(kf.Labels)) {
			fmt.Fprintf(&sb, "\t%q: %q\n", k, kf.Labels[k])
		}
		sb.WriteString("}\n")
	}

	fmt.Fprintf(&sb, "base: image: %q\n", kf.Base.Image)

	generateArgs(&sb, kf.Args)
	generatePackages(&sb, kf.Packages)
	generateDeps(&sb, kf.Deps)
	generateEnv(&sb, kf.Env)
	generateAccount(&sb, kf.Account)
	generateShell(&sb, kf.Shell)

	if len(kf.Ports) > 0 {
		sb.WriteString("ports: [")
		for i, p := range kf.Ports {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%q", p)
		}
		sb.WriteString("]\n")
	}
	if kf.WorkDir != "" {
		fmt.Fprintf(&sb, "workdir: %q\n", kf.WorkDir)
	}

	return sb.String()
}

func generateArgs(sb *strings.Builder, args []Arg) {
	if len(args) == 0 {
		return
	}
	sb.WriteString("args: [\n")
	for _, a := range args {
		sb.WriteString("\t{")
		fmt.Fprintf(sb, "name: %q", a.Name)
		if a.Default != "" {
			fmt.Fprintf(sb, ", default: %q", a.Default)
		}
		if a.Secret {
			sb.WriteString(", secret: true")
		}
		if a.Description != "" {
			fmt.Fprintf(sb, ", description: %q", a.Description)
		}
		sb.WriteString("},\n")
	}
	sb.WriteString("]\n")
}

func generatePackages(sb *strings.Builder, pkgs *Packages) {
	if pkgs == nil {
		return
	}
	sb.WriteString("packages: {\n")
	if !pkgs.Update {
		sb.WriteString("\tupdate: false\n")
	}
	if pkgs.Upgrade {
		sb.WriteString("\tupgrade: true\n")
	}
	if len(pkgs.System) > 0 {
		sb.WriteString("\tsystem: [\n")
		for _, g := range pkgs.System {
			sb.WriteString("\t\t{packages: [")
			for i, p := range g.Packages {
				if i > 0 {
					sb.WriteString(", ")
				}
				fmt.Fprintf(sb, "%q", p)
			}
			sb.WriteString("]},\n")
		}
		sb.WriteString("\t]\n")
	}
	if len(pkgs.Python) > 0 {
		sb.WriteString("\tpython: [\n")
		for _, p := range pkgs.Python {
			fmt.Fprintf(sb, "\t\t%q,\n", p)
		}
		sb.WriteString("\t]\n")
	}
	if len(pkgs.Setup) > 0 {
		sb.WriteString("\tsetup: [\n")
		for _, line := range pkgs.Setup {
			fmt.Fprintf(sb, "\t\t%q,\n", line)
		}
		sb.WriteString("\t]\n")
	}
	sb.WriteString("}\n")
}

func generateDeps(sb *strings.Builder, deps []Dependency) {
	if len(deps) == 0 {
		return
	}
	sb.WriteString("deps: [\n")
	for i := range deps {
		d := &deps[i]
		sb.WriteString("\t{\n")
		fmt.Fprintf(sb, "\t\tname: %q\n", d.Name)
		fmt.Fprintf(sb, "\t\trepo: %q\n", d.Repo)
		if d.Ref != "" {
			fmt.Fprintf(sb, "\t\tref: %q\n", d.Ref)
		}
		if d.Commit != "" {
			fmt.Fprintf(sb, "\t\tcommit: %q\n", d.Commit)
		}
		fmt.Fprintf(sb, "\t\tpath: %q\n", d.Path)
		sb.WriteString("\t},\n")
	}
	sb.WriteString("]\n")
}

func generateEnv(sb *strings.Builder, env *Env) {
	if env == nil || (env.Path == nil && len(env.Vars) == 0) {
		return
	}
	sb.WriteString("env: {\n")
	if env.Path != nil {
		sb.WriteString("\tpath: {\n")
		fmt.Fprintf(sb, "\t\tname: %q\n", env.Path.Name)
		sb.WriteString("\t\tappend: [\n")
		for _, entry := range env.Path.Append {
			fmt.Fprintf(sb, "\t\t\t%q,\n", entry)
		}
		sb.WriteString("\t\t]\n")
		sb.WriteString("\t}\n")
	}
	if len(env.Vars) > 0 {
		sb.WriteString("\tvars: {\n")
		for _, k := range slices.Sorted(maps.Keys(env.Vars)) {
			fmt.Fprintf(sb, "\t\t%s: %q\n", k, env.Vars[k])
		}
		sb.WriteString("\t}\n")
	}
	sb.WriteString("}\n")
}

func generateAccount(sb *strings.Builder, acct *Account) {
	if acct == nil {
		return
	}
	sb.WriteString("account: {\n")
	fmt.Fprintf(sb, "\tgid: %q\n", acct.GID)
	fmt.Fprintf(sb, "\tgroup: %q\n", acct.Group)
	fmt.Fprintf(sb, "\tuid: %q\n", acct.UID)
	fmt.Fprintf(sb, "\tuser: %q\n", acct.User)
	if acct.Password != "" {
		fmt.Fprintf(sb, "\tpassword: %q\n", acct.Password)
	}
	if acct.RootPassword != "" {
		fmt.Fprintf(sb, "\troot_password: %q\n", acct.RootPassword)
	}
	if acct.AdminGroup != "" && acct.AdminGroup != DefaultAdminGroup {
		fmt.Fprintf(sb, "\tadmin_group: %q\n", acct.AdminGroup)
	}
	if acct.Workspace != "" && acct.Workspace != DefaultWorkspace {
		fmt.Fprintf(sb, "\tworkspace: %q\n", acct.Workspace)
	}
	if acct.Home != "" {
		fmt.Fprintf(sb, "\thome: %q\n", acct.Home)
	}
	if acct.Shell != "" {
		fmt.Fprintf(sb, "\tshell: %q\n", acct.Shell)
	}
	sb.WriteString("}\n")
}

func generateShell(sb *strings.Builder, shell *Shell) {
	if shell == nil || (shell.RCFile == "" && len(shell.RC) == 0) {
		return
	}
	sb.WriteString("shell: {\n")
	if shell.RCFile != "" {
		fmt.Fprintf(sb, "\trc_file: %q\n", shell.RCFile)
	}
	if len(shell.RC) > 0 {
		sb.WriteString("\trc: [\n")
		for _, line := range shell.RC {
			fmt.Fprintf(sb, "\t\t%q,\n", line)
		}
		sb.WriteString("\t]\n")
	}
	sb.WriteString("}\n")
}
