// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	KilnfileNotFoundId Id = iota + 1
	KilnfileParseErrorId
	UnpinnedDependencyId
	LockDriftId
	ContainerEngineNotFoundId
	BuildFailedId
	ApplyAbortedId
	VerifyFailedId
	MissingArgsId
	ConfigLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // links into the kiln docs covering this issue
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	kilnfileNotFoundIssue = &Issue{
		id: KilnfileNotFoundId,
		mdMsg: `
# No kilnfile found!

We looked for a recipe but couldn't find one in the current directory.

## File names we probe (in order):
1. kilnfile.cue
2. kilnfile

## Things you can try:
- Create a starter kilnfile in your current directory:
~~~
$ kiln init
~~~

- Or point kiln at a recipe somewhere else:
~~~
$ kiln render -f /path/to/kilnfile.cue
~~~

## Example kilnfile structure:
~~~cue
version: "1.0"
description: "FINN compiler dev image"

base: "ubuntu:24.04"

packages: {
	update: true
	system: [["git", "curl"]]
	python: ["numpy"]
}
~~~`,
	}

	kilnfileParseErrorIssue = &Issue{
		id: KilnfileParseErrorId,
		mdMsg: `
# Failed to parse kilnfile!

Your kilnfile contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- Placeholders referencing args that were never declared
- Dependency commits that are not 40-character hashes

## Things you can try:
- Check the error message above for the specific line/column
- Validate the recipe without building anything:
~~~
$ kiln validate
~~~

- Run with verbose mode for more details:
~~~
$ kiln --verbose render
~~~

## Example of a valid dependency entry:
~~~cue
deps: [
	{
		name:   "brevitas"
		repo:   "https://github.com/Xilinx/brevitas.git"
		commit: "84f42259ec869eb151af4cb8a8b23ad925f493db"
		path:   "/workspace/brevitas"
	},
]
~~~`,
	}

	unpinnedDependencyIssue = &Issue{
		id: UnpinnedDependencyId,
		mdMsg: `
# Unpinned dependency!

A dependency has no commit pin, so the build would not be reproducible.

## Things you can try:
- Resolve every ref to a commit and write the pins to kiln.lock:
~~~
$ kiln lock
~~~

- Or pin the commit inline in the kilnfile:
~~~cue
deps: [
	{
		name:   "finn-hlslib"
		repo:   "https://github.com/Xilinx/finn-hlslib.git"
		commit: "ae53b89f1e1a858b2293dd0ec4a118b2c9dda5fc"
		path:   "/workspace/finn-hlslib"
	},
]
~~~`,
	}

	lockDriftIssue = &Issue{
		id: LockDriftId,
		mdMsg: `
# Lock file out of date!

The kiln.lock entries no longer match the kilnfile. Building against a
stale lock would silently pin the wrong sources.

## Common causes:
- A dependency repo or ref was edited in the kilnfile after the last lock
- The lock file was copied over from another branch

## Things you can try:
- Re-resolve the pins:
~~~
$ kiln lock
~~~

- Inspect what drifted:
~~~
$ git diff kiln.lock
~~~`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

Building an image needs Docker or Podman, and neither is available.

## Supported container engines:
- **Docker**
- **Podman**

## Things you can try:
- Install Docker:
  - https://docs.docker.com/get-docker/

- Install Podman:
  - Linux: ` + "`sudo apt install podman`" + ` or ` + "`sudo dnf install podman`" + `
  - macOS: ` + "`brew install podman`" + `

- Configure your preferred engine in ~/.config/kiln/config.cue:
~~~cue
engine: "docker"  // or "podman"
~~~

- Or provision the running system directly, no engine needed:
~~~
$ sudo kiln apply
~~~`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Image build failed!

The container engine reported an error while building the recipe image.

## Common causes:
- The base image could not be pulled
- A package install step failed inside the build
- A dependency clone hit a network failure

## Things you can try:
- Inspect the generated Dockerfile:
~~~
$ kiln render
~~~

- Re-run with full build output:
~~~
$ kiln --verbose build
~~~

- Retry without the build cache:
~~~
$ kiln build --no-cache
~~~`,
	}

	applyAbortedIssue = &Issue{
		id: ApplyAbortedId,
		mdMsg: `
# Provisioning aborted!

kiln apply stopped at the first failed step. Steps are strictly ordered,
so everything before the failure is done and everything after it was
never attempted.

## Things you can try:
- Read the reported step number to see how far provisioning got
- Fix the failing command (network, permissions, package names)
- Re-run the apply; steps like package installs are idempotent:
~~~
$ sudo kiln apply
~~~`,
	}

	verifyFailedIssue = &Issue{
		id: VerifyFailedId,
		mdMsg: `
# Verification failed!

The running system does not match what the kilnfile describes.

## Things you can try:
- Read the failed checks above; each one names the property it covers
- Re-provision the system:
~~~
$ sudo kiln apply
~~~

- If only a dependency pin drifted, reset the checkout:
~~~
$ git -C /workspace/brevitas checkout <commit>
~~~`,
	}

	missingArgsIssue = &Issue{
		id: MissingArgsId,
		mdMsg: `
# Missing build arguments!

The recipe declares args without defaults, and no value was provided for
some of them.

## Value sources (in order of precedence):
1. --arg NAME=value flags
2. --arg-file entries (dotenv format)
3. Process environment variables
4. Defaults declared in the kilnfile

## Things you can try:
- Pass the missing values on the command line:
~~~
$ kiln build --arg UNAME=alice --arg PASSWD=changeme
~~~

- Or keep them in an env file:
~~~
$ kiln build --arg-file build.env
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the kiln configuration file.

## Configuration file locations:
- Linux: ~/.config/kiln/config.cue
- macOS: ~/Library/Application Support/kiln/config.cue
- Windows: %APPDATA%\kiln\config.cue

## Things you can try:
- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/kiln/config.cue
~~~

## Example configuration:
~~~cue
engine: "docker"
default_registry: ""

ui: {
	color_scheme: "auto"
	verbose: false
}
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- Running 'kiln apply' without root (it creates users and writes under /etc)
- The container engine socket requires group membership
- Writing the build context into a protected directory

## Things you can try:
- Run apply with elevated permissions:
~~~
$ sudo kiln apply
~~~

- For builds, ensure you're in the docker group:
~~~
$ sudo usermod -aG docker $USER
~~~

- Use rootless containers with Podman`,
	}

	issues = map[Id]*Issue{
		kilnfileNotFoundIssue.Id():        kilnfileNotFoundIssue,
		kilnfileParseErrorIssue.Id():      kilnfileParseErrorIssue,
		unpinnedDependencyIssue.Id():      unpinnedDependencyIssue,
		lockDriftIssue.Id():               lockDriftIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		buildFailedIssue.Id():             buildFailedIssue,
		applyAbortedIssue.Id():            applyAbortedIssue,
		verifyFailedIssue.Id():            verifyFailedIssue,
		missingArgsIssue.Id():             missingArgsIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
