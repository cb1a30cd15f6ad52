// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"strings"
	"testing"
)

func TestGenerateCUE_Roundtrip(t *testing.T) {
	t.Parallel()

	kf := parseCanonical(t)

	generated := GenerateCUE(kf)
	reparsed, err := ParseBytes([]byte(generated))
	if err != nil {
		t.Fatalf("ParseBytes() on generated CUE returned error: %v\n%s", err, generated)
	}

	if reparsed.Base.Image != kf.Base.Image {
		t.Errorf("roundtrip Base.Image = %q, want %q", reparsed.Base.Image, kf.Base.Image)
	}
	if len(reparsed.Args) != len(kf.Args) {
		t.Errorf("roundtrip len(Args) = %d, want %d", len(reparsed.Args), len(kf.Args))
	}
	if len(reparsed.Deps) != len(kf.Deps) {
		t.Errorf("roundtrip len(Deps) = %d, want %d", len(reparsed.Deps), len(kf.Deps))
	}
	for i := range kf.Deps {
		if reparsed.Deps[i].Commit != kf.Deps[i].Commit {
			t.Errorf("roundtrip Deps[%d].Commit = %q, want %q", i, reparsed.Deps[i].Commit, kf.Deps[i].Commit)
		}
	}
	if reparsed.Env.Path.Value() != kf.Env.Path.Value() {
		t.Errorf("roundtrip search path = %q, want %q", reparsed.Env.Path.Value(), kf.Env.Path.Value())
	}
	if len(reparsed.Shell.RC) != len(kf.Shell.RC) {
		t.Errorf("roundtrip len(Shell.RC) = %d, want %d", len(reparsed.Shell.RC), len(kf.Shell.RC))
	}
	if reparsed.WorkDir != kf.WorkDir {
		t.Errorf("roundtrip WorkDir = %q, want %q", reparsed.WorkDir, kf.WorkDir)
	}
}

func TestGenerateCUE_Fields(t *testing.T) {
	t.Parallel()

	kf := &Kilnfile{
		Description: "starter image",
		Base:        Base{Image: "ubuntu:24.04"},
		Args: []Arg{
			{Name: "UID", Default: "1000"},
			{Name: "PASSWD", Secret: true},
		},
		Packages: &Packages{
			Update: true,
			System: []PackageGroup{{Packages: []PackageName{"git", "curl"}}},
		},
		Env: &Env{
			Path: &SearchPath{Name: "PYTHONPATH", Append: []string{"/workspace/src"}},
			Vars: map[EnvVarName]string{"BOARD_FILES": "/workspace/boards"},
		},
		Ports:   []PortSpec{"8888"},
		WorkDir: "/workspace",
	}

	got := GenerateCUE(kf)

	checks := []string{
		`description: "starter image"`,
		`base: image: "ubuntu:24.04"`,
		`name: "UID", default: "1000"`,
		`name: "PASSWD", secret: true`,
		`{packages: ["git", "curl"]}`,
		`name: "PYTHONPATH"`,
		`BOARD_FILES: "/workspace/boards"`,
		`ports: ["8888"]`,
		`workdir: "/workspace"`,
	}
	for _, check := range checks {
		if !strings.Contains(got, check) {
			t.Errorf("expected %q in generated CUE, got:\n%s", check, got)
		}
	}

	if strings.Contains(got, "update: false") {
		t.Error("default update value should not be emitted")
	}
}
