// SPDX-License-Identifier: MPL-2.0

// Package apply executes a provisioning plan directly on the running
// system, for provisioning a machine or an already-running container the
// same way an image build would. Steps run strictly in plan order as
// external commands; the first failure aborts the run with the step it
// died at. Image metadata steps (base, expose, workdir) have no live
// system equivalent and are skipped with a log line.
//
// Environment variables become export lines in /etc/profile.d, and rc
// lines are appended through the same shell command the renderer bakes
// into RUN directives, so both paths write identical bytes.
package apply

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"kiln-cli/internal/bake"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// LookupUserFunc resolves a username to its account record.
	LookupUserFunc func(username string) (*user.User, error)

	// Option configures an Applier.
	Option func(*Applier)

	// Applier runs plan steps against the local system. The zero value is
	// not usable; construct one with New.
	Applier struct {
		execCommand ExecCommandFunc
		lookupUser  LookupUserFunc
		logger      *log.Logger
		stdout      io.Writer
		stderr      io.Writer
		shellPath   string

		// Credentials applied to commands after a switch-user step.
		uid, gid uint32
		switched bool
	}

	// StepError reports the step a run aborted at. Index is 1-based and
	// counts all plan steps, including skipped metadata steps, so it maps
	// directly onto the progress log.
	StepError struct {
		Index int
		Total int
		Desc  string
		Err   error
	}
)

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("aborted at step %d of %d (%s): %v", e.Index, e.Total, e.Desc, e.Err)
}

// Unwrap returns the underlying cause so callers can use errors.Is to
// detect cancellation or exit errors.
func (e *StepError) Unwrap() error { return e.Err }

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(a *Applier) {
		a.execCommand = fn
	}
}

// WithLookupUser sets a custom user lookup function for testing.
func WithLookupUser(fn LookupUserFunc) Option {
	return func(a *Applier) {
		a.lookupUser = fn
	}
}

// WithLogger sets the progress logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *Applier) {
		a.logger = logger
	}
}

// WithOutput redirects command stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *Applier) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithShellPath sets the shell used for setup and append commands.
func WithShellPath(path string) Option {
	return func(a *Applier) {
		a.shellPath = path
	}
}

// New creates an Applier with the default command execution and logging.
func New(opts ...Option) *Applier {
	a := &Applier{
		execCommand: exec.CommandContext,
		lookupUser:  user.Lookup,
		logger:      log.NewWithOptions(os.Stderr, log.Options{Prefix: "apply"}),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		shellPath:   "/bin/bash",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply runs every plan step in order and stops at the first failure.
// Steps are never retried, reordered, or continued past an error; a
// cancelled context aborts before the next step starts.
func (a *Applier) Apply(ctx context.Context, plan *bake.Plan) error {
	total := len(plan.Steps)
	for i, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Index: i + 1, Total: total, Desc: step.Desc, Err: err}
		}
		a.logger.Info(step.Desc, "step", fmt.Sprintf("%d/%d", i+1, total))
		if err := a.applyStep(ctx, step); err != nil {
			return &StepError{Index: i + 1, Total: total, Desc: step.Desc, Err: err}
		}
	}
	return nil
}

func (a *Applier) applyStep(ctx context.Context, step bake.Step) error {
	switch step.Kind {
	case bake.KindBase:
		// The running system is the base; there is nothing to pull.
		a.logger.Debug("assuming the running system provides the base image")
		return nil
	case bake.KindExpose, bake.KindWorkdir:
		a.logger.Debug("skipping image metadata step", "kind", string(step.Kind))
		return nil
	case bake.KindSwitchUser:
		return a.switchTo(step.User)
	case bake.KindEnvSet:
		return a.runShell(ctx, bake.ExportLineCommand(step.Name, step.Value, step.File))
	case bake.KindRCAppend:
		return a.runShell(ctx, bake.AppendLineCommand(step.Line, step.File))
	default:
		if len(step.Argv) > 0 {
			return a.runArgv(ctx, step.Argv, step.Stdin)
		}
		if step.Shell != "" {
			return a.runShell(ctx, step.Shell)
		}
		return nil
	}
}

// switchTo makes subsequent commands run with the user's credentials. The
// account was created by an earlier step, so the lookup happens at apply
// time rather than when the plan is built. Credentials take effect on
// Linux; elsewhere they are recorded but not applied.
func (a *Applier) switchTo(username string) error {
	u, err := a.lookupUser(username)
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", username, err)
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return fmt.Errorf("non-numeric uid %q for user %s: %w", u.Uid, username, err)
	}
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return fmt.Errorf("non-numeric gid %q for user %s: %w", u.Gid, username, err)
	}
	a.uid, a.gid = uint32(uid), uint32(gid)
	a.switched = true
	return nil
}

func (a *Applier) runShell(ctx context.Context, script string) error {
	return a.runArgv(ctx, []string{a.shellPath, "-c", script}, "")
}

func (a *Applier) runArgv(ctx context.Context, argv []string, stdin string) error {
	cmd := a.execCommand(ctx, argv[0], argv[1:]...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	cmd.Stdout = a.stdout
	cmd.Stderr = a.stderr
	if a.switched {
		applyCredential(cmd, a.uid, a.gid)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %s failed: %w", argv[0], err)
	}
	return nil
}
