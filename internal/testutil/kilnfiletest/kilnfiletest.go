// SPDX-License-Identifier: MPL-2.0

package kilnfiletest

import (
	"kiln-cli/pkg/kilnfile"
	"kiln-cli/pkg/types"
)

// Option configures a test kilnfile.
type Option func(*kilnfile.Kilnfile)

// New creates a test kilnfile with the given options. The default is the
// smallest valid recipe: an ubuntu base and nothing else.
//
// Usage:
//
//	kf := kilnfiletest.New()
//	kf := kilnfiletest.New(
//	    kilnfiletest.WithArg("UID", "1000", false),
//	    kilnfiletest.WithWorkDir("/workspace"),
//	)
func New(opts ...Option) *kilnfile.Kilnfile {
	kf := &kilnfile.Kilnfile{
		Base: kilnfile.Base{Image: "ubuntu:24.04"},
	}
	for _, opt := range opts {
		opt(kf)
	}
	return kf
}

// WithBase sets the base image reference.
func WithBase(image string) Option {
	return func(kf *kilnfile.Kilnfile) {
		kf.Base.Image = kilnfile.ImageRef(image)
	}
}

// WithArg declares a build arg.
func WithArg(name, defaultValue string, secret bool) Option {
	return func(kf *kilnfile.Kilnfile) {
		kf.Args = append(kf.Args, kilnfile.Arg{
			Name:    kilnfile.ArgName(name),
			Default: defaultValue,
			Secret:  secret,
		})
	}
}

// WithPackages sets the package stage.
func WithPackages(pkgs *kilnfile.Packages) Option {
	return func(kf *kilnfile.Kilnfile) {
		kf.Packages = pkgs
	}
}

// WithDep appends a dependency.
func WithDep(dep kilnfile.Dependency) Option {
	return func(kf *kilnfile.Kilnfile) {
		kf.Deps = append(kf.Deps, dep)
	}
}

// WithSearchPath sets the search path variable and its entries.
func WithSearchPath(name string, entries ...string) Option {
	return func(kf *kilnfile.Kilnfile) {
		if kf.Env == nil {
			kf.Env = &kilnfile.Env{}
		}
		kf.Env.Path = &kilnfile.SearchPath{
			Name:   kilnfile.EnvVarName(name),
			Append: entries,
		}
	}
}

// WithVar sets one environment variable.
func WithVar(name, value string) Option {
	return func(kf *kilnfile.Kilnfile) {
		if kf.Env == nil {
			kf.Env = &kilnfile.Env{}
		}
		if kf.Env.Vars == nil {
			kf.Env.Vars = make(map[kilnfile.EnvVarName]string)
		}
		kf.Env.Vars[kilnfile.EnvVarName(name)] = value
	}
}

// WithAccount sets the account stage.
func WithAccount(acct *kilnfile.Account) Option {
	return func(kf *kilnfile.Kilnfile) {
		kf.Account = acct
	}
}

// WithShellRC appends rc lines.
func WithShellRC(lines ...string) Option {
	return func(kf *kilnfile.Kilnfile) {
		if kf.Shell == nil {
			kf.Shell = &kilnfile.Shell{}
		}
		for _, line := range lines {
			kf.Shell.RC = append(kf.Shell.RC, kilnfile.ShellLine(line))
		}
	}
}

// WithPorts sets the exposed port specs.
func WithPorts(ports ...string) Option {
	return func(kf *kilnfile.Kilnfile) {
		for _, p := range ports {
			kf.Ports = append(kf.Ports, kilnfile.PortSpec(p))
		}
	}
}

// WithWorkDir sets the final working directory.
func WithWorkDir(dir string) Option {
	return func(kf *kilnfile.Kilnfile) {
		kf.WorkDir = types.FilesystemPath(dir)
	}
}

// Canonical returns the reference recipe shared by plan, render, apply, and
// verify tests: an FPGA accelerator dev image with five pinned dependencies,
// a five entry search path, arg-driven account provisioning, and two
// exposed ports.
func Canonical() *kilnfile.Kilnfile {
	return &kilnfile.Kilnfile{
		Description: "FPGA dataflow accelerator dev image",
		Base:        kilnfile.Base{Image: "pytorch/pytorch:1.1.0-cuda10.0-cudnn7.5-runtime"},
		Args: []kilnfile.Arg{
			{Name: "GID"},
			{Name: "GNAME"},
			{Name: "UID"},
			{Name: "UNAME"},
			{Name: "PASSWD", Secret: true},
			{Name: "JUPYTER_PORT", Default: "8888"},
			{Name: "NETRON_PORT", Default: "8081"},
			{Name: "PYTHON_VERSION", Default: "3.6"},
		},
		Packages: &kilnfile.Packages{
			Update: true,
			System: []kilnfile.PackageGroup{
				{Packages: []kilnfile.PackageName{"build-essential", "libglib2.0-0", "libsm6", "libxext6", "libxrender-dev"}},
				{Packages: []kilnfile.PackageName{"verilator", "nano", "zsh", "rsync"}},
				{Packages: []kilnfile.PackageName{"sshpass", "wget", "unzip"}},
			},
			Python: []kilnfile.PackageName{"jupyter", "netron", "matplotlib", "pytest-dependency", "sphinx", "pygments==2.4.1"},
			Setup:  []kilnfile.ShellLine{`echo "StrictHostKeyChecking no" >> /etc/ssh/ssh_config`},
		},
		Deps: []kilnfile.Dependency{
			{Name: "brevitas", Repo: "https://github.com/Xilinx/brevitas.git", Commit: "989cdfdba4700fdd900ba0b25a820591d561c21a", Path: "/workspace/brevitas"},
			{Name: "cnpy", Repo: "https://github.com/rogersce/cnpy.git", Commit: "4e8810b1a8637695171ed346ce68f6984e585ef4", Path: "/workspace/cnpy"},
			{Name: "finn-hlslib", Repo: "https://github.com/Xilinx/finn-hlslib.git", Commit: "b139bf051ac8f8e0a3625509247f714127cf3317", Path: "/workspace/finn-hlslib"},
			{Name: "pyverilator", Repo: "https://github.com/maltanar/pyverilator.git", Commit: "307fc5c82db448a14f61a3be452f5105eb761667", Path: "/workspace/pyverilator"},
			{Name: "pynq-helloworld", Repo: "https://github.com/Xilinx/PYNQ-HelloWorld.git", Commit: "db7e418767ce2a8e08fe732ddb3aa56ee79b7560", Path: "/workspace/PYNQ-HelloWorld"},
		},
		Env: &kilnfile.Env{
			Path: &kilnfile.SearchPath{
				Name: "PYTHONPATH",
				Append: []string{
					"/workspace/finn/src",
					"/workspace/brevitas/src",
					"/workspace/cnpy",
					"/workspace/finn-hlslib",
					"/workspace/pyverilator",
				},
			},
			Vars: map[kilnfile.EnvVarName]string{
				"BOARD_FILES": "/workspace/PYNQ-HelloWorld/boards",
			},
		},
		Account: &kilnfile.Account{
			GID:          "${GID}",
			Group:        "${GNAME}",
			UID:          "${UID}",
			User:         "${UNAME}",
			Password:     "${PASSWD}",
			RootPassword: "${PASSWD}",
			AdminGroup:   "sudo",
			Workspace:    "/workspace",
		},
		Shell: &kilnfile.Shell{
			RC: []kilnfile.ShellLine{
				"source /opt/vendor/settings.sh",
				`export PS1='\[\033[1;36m\]\u\[\033[1;31m\]@\[\033[1;32m\]\h:\[\033[1;35m\]\w\[\033[1;31m\]\$\[\033[0m\] '`,
			},
		},
		Ports:   []kilnfile.PortSpec{"${JUPYTER_PORT}", "${NETRON_PORT}"},
		WorkDir: "/workspace/finn",
	}
}

// CanonicalArgs returns a resolved value set matching Canonical's args.
func CanonicalArgs() map[kilnfile.ArgName]string {
	return map[kilnfile.ArgName]string{
		"GID":            "1000",
		"GNAME":          "devs",
		"UID":            "1000",
		"UNAME":          "alice",
		"PASSWD":         "hunter2",
		"JUPYTER_PORT":   "8888",
		"NETRON_PORT":    "8081",
		"PYTHON_VERSION": "3.6",
	}
}
