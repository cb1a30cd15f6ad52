// SPDX-License-Identifier: MPL-2.0

// Package verify checks a provisioned system against the recipe that
// provisioned it: dependencies sit at their paths on their pinned commits,
// the search path carries exactly the declared entries in order, the
// account exists with the requested ids and admin membership, the
// workspace symlink resolves, and the rc lines are in place.
//
// Verification is read-only and reports every failed property instead of
// stopping at the first, so one run gives the full damage picture.
package verify

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"kiln-cli/pkg/kilnfile"
	"kiln-cli/pkg/types"
)

type (
	// HeadReader reports the commit a local checkout sits on. *fetch.Git
	// satisfies it; tests substitute a fake.
	HeadReader interface {
		Head(ctx context.Context, dir string) (kilnfile.CommitHash, error)
	}

	// LookupEnvFunc reads one environment variable.
	LookupEnvFunc func(key string) (string, bool)

	// LookupUserFunc resolves a username to its account record.
	LookupUserFunc func(username string) (*user.User, error)

	// LookupGroupFunc resolves a group name to its record.
	LookupGroupFunc func(name string) (*user.Group, error)

	// GroupIDsFunc lists the group ids a user belongs to.
	GroupIDsFunc func(u *user.User) ([]string, error)

	// Option configures a Verifier.
	Option func(*Verifier)

	// Verifier checks recipe properties against the local system.
	Verifier struct {
		head        HeadReader
		lookupEnv   LookupEnvFunc
		lookupUser  LookupUserFunc
		lookupGroup LookupGroupFunc
		groupIDs    GroupIDsFunc
		root        string
	}

	// Check is the outcome of one verified property. A nil Err means the
	// property holds.
	Check struct {
		Name string
		Err  error
	}

	// Report collects the checks of one verification run.
	Report struct {
		Checks []Check
	}
)

// WithLookupEnv sets a custom environment reader for testing.
func WithLookupEnv(fn LookupEnvFunc) Option {
	return func(v *Verifier) {
		v.lookupEnv = fn
	}
}

// WithLookupUser sets a custom user lookup function for testing.
func WithLookupUser(fn LookupUserFunc) Option {
	return func(v *Verifier) {
		v.lookupUser = fn
	}
}

// WithLookupGroup sets a custom group lookup function for testing.
func WithLookupGroup(fn LookupGroupFunc) Option {
	return func(v *Verifier) {
		v.lookupGroup = fn
	}
}

// WithGroupIDs sets a custom group membership function for testing.
func WithGroupIDs(fn GroupIDsFunc) Option {
	return func(v *Verifier) {
		v.groupIDs = fn
	}
}

// WithRoot prefixes every filesystem check with a root directory, so tests
// can verify against a scratch tree instead of the real one.
func WithRoot(root string) Option {
	return func(v *Verifier) {
		v.root = root
	}
}

// New creates a Verifier that reads commits through head and everything
// else through the local system.
func New(head HeadReader, opts ...Option) *Verifier {
	v := &Verifier{
		head:        head,
		lookupEnv:   os.LookupEnv,
		lookupUser:  user.Lookup,
		lookupGroup: user.LookupGroup,
		groupIDs:    func(u *user.User) ([]string, error) { return u.GroupIds() },
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks every property the recipe promises. The recipe must be
// resolved already; placeholder values cannot be verified.
func (v *Verifier) Verify(ctx context.Context, kf *kilnfile.Kilnfile) *Report {
	r := &Report{}
	v.checkDeps(ctx, r, kf.Deps)
	v.checkEnv(r, kf.Env)
	v.checkAccount(r, kf.Account)
	v.checkShell(r, kf)
	v.checkWorkdir(r, kf.WorkDir)
	return r
}

func (v *Verifier) checkDeps(ctx context.Context, r *Report, deps []kilnfile.Dependency) {
	for i := range deps {
		d := &deps[i]
		name := "dependency " + string(d.Name)
		dir := v.path(string(d.Path))

		info, err := os.Stat(dir)
		if err != nil {
			r.add(name+" path", err)
			continue
		}
		if !info.IsDir() {
			r.add(name+" path", fmt.Errorf("%s is not a directory", d.Path))
			continue
		}
		r.add(name+" path", nil)

		head, err := v.head.Head(ctx, dir)
		if err != nil {
			r.add(name+" pin", err)
			continue
		}
		if head != d.Commit {
			r.add(name+" pin", fmt.Errorf("checked out %s, want %s", head.Short(), d.Commit.Short()))
			continue
		}
		r.add(name+" pin", nil)
	}
}

func (v *Verifier) checkEnv(r *Report, env *kilnfile.Env) {
	if env == nil {
		return
	}
	if env.Path != nil {
		name := "search path " + string(env.Path.Name)
		got, ok := v.lookupEnv(string(env.Path.Name))
		switch {
		case !ok:
			r.add(name, fmt.Errorf("%s is not set", env.Path.Name))
		case !slices.Equal(strings.Split(got, ":"), env.Path.Append):
			r.add(name, fmt.Errorf("%s is %q, want exactly %q", env.Path.Name, got, env.Path.Value()))
		default:
			r.add(name, nil)
		}
	}
	for _, varName := range slices.Sorted(maps.Keys(env.Vars)) {
		name := "env " + string(varName)
		got, ok := v.lookupEnv(string(varName))
		switch {
		case !ok:
			r.add(name, fmt.Errorf("%s is not set", varName))
		case got != env.Vars[varName]:
			r.add(name, fmt.Errorf("%s is %q, want %q", varName, got, env.Vars[varName]))
		default:
			r.add(name, nil)
		}
	}
}

func (v *Verifier) checkAccount(r *Report, acct *kilnfile.Account) {
	if acct == nil {
		return
	}

	u, uErr := v.lookupUser(acct.User)
	switch {
	case uErr != nil:
		r.add("user "+acct.User, uErr)
	case u.Uid != acct.UID:
		r.add("user "+acct.User, fmt.Errorf("uid is %s, want %s", u.Uid, acct.UID))
	default:
		r.add("user "+acct.User, nil)
	}

	g, gErr := v.lookupGroup(acct.Group)
	switch {
	case gErr != nil:
		r.add("group "+acct.Group, gErr)
	case g.Gid != acct.GID:
		r.add("group "+acct.Group, fmt.Errorf("gid is %s, want %s", g.Gid, acct.GID))
	default:
		r.add("group "+acct.Group, nil)
	}

	if uErr == nil {
		v.checkAdminMembership(r, acct, u)
	}

	home := acct.HomePath()
	link := v.path(path.Join(string(home), path.Base(string(acct.Workspace))))
	target, err := os.Readlink(link)
	switch {
	case err != nil:
		r.add("workspace symlink", err)
	case target != string(acct.Workspace):
		r.add("workspace symlink", fmt.Errorf("%s points at %s, want %s", link, target, acct.Workspace))
	default:
		r.add("workspace symlink", nil)
	}
}

func (v *Verifier) checkAdminMembership(r *Report, acct *kilnfile.Account, u *user.User) {
	name := "admin group " + acct.AdminGroup

	admin, err := v.lookupGroup(acct.AdminGroup)
	if err != nil {
		r.add(name, err)
		return
	}
	ids, err := v.groupIDs(u)
	if err != nil {
		r.add(name, err)
		return
	}
	if !slices.Contains(ids, admin.Gid) {
		r.add(name, fmt.Errorf("%s is not a member of %s", acct.User, acct.AdminGroup))
		return
	}
	r.add(name, nil)
}

func (v *Verifier) checkShell(r *Report, kf *kilnfile.Kilnfile) {
	if kf.Shell == nil || len(kf.Shell.RC) == 0 {
		return
	}
	home := types.FilesystemPath("/root")
	if kf.Account != nil {
		home = kf.Account.HomePath()
	}
	rcPath := v.path(string(kf.Shell.RCFilePath(home)))

	data, err := os.ReadFile(rcPath)
	if err != nil {
		r.add("rc file", err)
		return
	}
	lines := strings.Split(string(data), "\n")

	// Each declared line must appear, and in declared order. The file may
	// carry unrelated content (skel defaults) between them.
	next := 0
	for i, want := range kf.Shell.RC {
		name := fmt.Sprintf("rc line %d", i+1)
		found := -1
		for j := next; j < len(lines); j++ {
			if lines[j] == string(want) {
				found = j
				break
			}
		}
		if found < 0 {
			r.add(name, fmt.Errorf("line %q missing or out of order in %s", want, rcPath))
			continue
		}
		next = found + 1
		r.add(name, nil)
	}
}

func (v *Verifier) checkWorkdir(r *Report, workdir types.FilesystemPath) {
	if workdir == "" {
		return
	}
	info, err := os.Stat(v.path(string(workdir)))
	switch {
	case err != nil:
		r.add("workdir", err)
	case !info.IsDir():
		r.add("workdir", fmt.Errorf("%s is not a directory", workdir))
	default:
		r.add("workdir", nil)
	}
}

// path maps an absolute recipe path onto the verifier's filesystem root.
func (v *Verifier) path(p string) string {
	if v.root == "" {
		return p
	}
	return filepath.Join(v.root, p)
}

func (r *Report) add(name string, err error) {
	r.Checks = append(r.Checks, Check{Name: name, Err: err})
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if c.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not hold.
func (r *Report) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if c.Err != nil {
			failed = append(failed, c)
		}
	}
	return failed
}
