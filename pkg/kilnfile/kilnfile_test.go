// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"strings"
	"testing"
)

func TestKilnfile_Accessors(t *testing.T) {
	t.Parallel()

	kf := parseCanonical(t)

	arg, ok := kf.Arg("PASSWD")
	if !ok || !arg.Secret {
		t.Errorf("Arg(PASSWD) = %+v, %v; want the secret arg", arg, ok)
	}
	if _, ok := kf.Arg("NOPE"); ok {
		t.Error("Arg(NOPE) should not be found")
	}

	names := kf.ArgNames()
	if len(names) != 8 || names[0] != "GID" || names[7] != "PYTHON_VERSION" {
		t.Errorf("ArgNames() = %v, want declaration order", names)
	}

	secret := kf.SecretArgNames()
	if len(secret) != 1 || !secret["PASSWD"] {
		t.Errorf("SecretArgNames() = %v, want only PASSWD", secret)
	}

	dep, ok := kf.Dependency("pyverilator")
	if !ok || dep.Path != "/workspace/pyverilator" {
		t.Errorf("Dependency(pyverilator) = %+v, %v", dep, ok)
	}
	if _, ok := kf.Dependency("missing"); ok {
		t.Error("Dependency(missing) should not be found")
	}
}

func TestKilnfile_Validate_Structural(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Kilnfile)
		wantSub string
	}{
		{
			name:    "duplicate arg",
			mutate:  func(kf *Kilnfile) { kf.Args = append(kf.Args, Arg{Name: "GID"}) },
			wantSub: "more than once",
		},
		{
			name: "duplicate dependency path",
			mutate: func(kf *Kilnfile) {
				kf.Deps = append(kf.Deps, Dependency{
					Name: "other",
					Repo: "https://example.com/other.git",
					Path: kf.Deps[0].Path,
				})
			},
			wantSub: "used more than once",
		},
		{
			name:    "relative workdir",
			mutate:  func(kf *Kilnfile) { kf.WorkDir = "workspace/finn" },
			wantSub: "absolute",
		},
		{
			name:    "bad base image",
			mutate:  func(kf *Kilnfile) { kf.Base.Image = "UPPER CASE NOT ALLOWED" },
			wantSub: "image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			kf := parseCanonical(t)
			tt.mutate(kf)
			err := kf.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantSub)
			}
		})
	}
}

func TestKilnfile_PlaceholderSources(t *testing.T) {
	t.Parallel()

	kf := parseCanonical(t)

	var all []string
	for _, src := range kf.placeholderSources() {
		for _, n := range PlaceholderNames(src) {
			all = append(all, string(n))
		}
	}

	want := map[string]bool{
		"GID": true, "GNAME": true, "UID": true, "UNAME": true,
		"PASSWD": true, "JUPYTER_PORT": true, "NETRON_PORT": true,
	}
	seen := make(map[string]bool)
	for _, n := range all {
		if !want[n] {
			t.Errorf("unexpected placeholder %q collected", n)
		}
		seen[n] = true
	}
	for n := range want {
		if !seen[n] {
			t.Errorf("placeholder %q not collected from any field", n)
		}
	}
}
