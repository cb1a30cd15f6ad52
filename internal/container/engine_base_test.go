// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"kiln-cli/internal/issue"
)

func newTestEngine(rec *MockCommandRecorder, t *testing.T) *BaseCLIEngine {
	t.Helper()
	return NewBaseCLIEngine("docker",
		WithName("docker"),
		WithExecCommand(rec.CommandFunc(t)),
	)
}

func TestImageTag_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tag     ImageTag
		wantErr bool
	}{
		{"simple tag", ImageTag("debian:stable-slim"), false},
		{"latest tag", ImageTag("ubuntu:latest"), false},
		{"registry with port", ImageTag("registry.example.com:5000/myimage:v1"), false},
		{"nested repository", ImageTag("kiln/finn-dev:latest"), false},
		{"no tag", ImageTag("debian"), false},
		{"empty is invalid", ImageTag(""), true},
		{"whitespace only is invalid", ImageTag("   "), true},
		{"uppercase repository is invalid", ImageTag("Kiln/Finn:latest"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.tag.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ImageTag(%q).Validate() returned unexpected error: %v", tt.tag, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ImageTag(%q).Validate() returned nil, want error", tt.tag)
			}
			if !errors.Is(err, ErrInvalidImageTag) {
				t.Errorf("error should wrap ErrInvalidImageTag, got: %v", err)
			}
			var itErr *InvalidImageTagError
			if !errors.As(err, &itErr) {
				t.Errorf("error should be *InvalidImageTagError, got: %T", err)
			} else if itErr.Value != tt.tag {
				t.Errorf("InvalidImageTagError.Value = %q, want %q", itErr.Value, tt.tag)
			}
		})
	}
}

func TestBuildOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     BuildOptions
		wantErrs int
	}{
		{
			name: "valid",
			opts: BuildOptions{ContextDir: "/tmp/ctx", Tag: "kiln/finn-dev:latest"},
		},
		{
			name:     "missing context dir",
			opts:     BuildOptions{Tag: "kiln/finn-dev:latest"},
			wantErrs: 1,
		},
		{
			name:     "missing tag",
			opts:     BuildOptions{ContextDir: "/tmp/ctx"},
			wantErrs: 1,
		},
		{
			name:     "everything missing",
			opts:     BuildOptions{},
			wantErrs: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opts.Validate()
			if tt.wantErrs == 0 {
				if err != nil {
					t.Fatalf("Validate() returned unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() returned nil, want error")
			}
			if !errors.Is(err, ErrInvalidBuildOptions) {
				t.Errorf("error should wrap ErrInvalidBuildOptions, got: %v", err)
			}
			var boErr *InvalidBuildOptionsError
			if !errors.As(err, &boErr) {
				t.Fatalf("error should be *InvalidBuildOptionsError, got: %T", err)
			}
			if len(boErr.FieldErrs) != tt.wantErrs {
				t.Errorf("FieldErrs count = %d, want %d", len(boErr.FieldErrs), tt.wantErrs)
			}
		})
	}
}

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	engine := NewBaseCLIEngine("docker")

	tests := []struct {
		name string
		opts BuildOptions
		want []string
	}{
		{
			name: "minimal",
			opts: BuildOptions{ContextDir: "/tmp/ctx", Tag: "kiln/finn-dev:latest"},
			want: []string{"build", "-t", "kiln/finn-dev:latest", "/tmp/ctx"},
		},
		{
			name: "relative dockerfile joined to context",
			opts: BuildOptions{ContextDir: "/tmp/ctx", Dockerfile: "Dockerfile", Tag: "kiln/finn-dev:latest"},
			want: []string{"build", "-f", "/tmp/ctx/Dockerfile", "-t", "kiln/finn-dev:latest", "/tmp/ctx"},
		},
		{
			name: "absolute dockerfile kept",
			opts: BuildOptions{ContextDir: "/tmp/ctx", Dockerfile: "/elsewhere/Dockerfile", Tag: "kiln/finn-dev:latest"},
			want: []string{"build", "-f", "/elsewhere/Dockerfile", "-t", "kiln/finn-dev:latest", "/tmp/ctx"},
		},
		{
			name: "no cache",
			opts: BuildOptions{ContextDir: "/tmp/ctx", Tag: "kiln/finn-dev:latest", NoCache: true},
			want: []string{"build", "-t", "kiln/finn-dev:latest", "--no-cache", "/tmp/ctx"},
		},
		{
			name: "build args in sorted order",
			opts: BuildOptions{
				ContextDir: "/tmp/ctx",
				Tag:        "kiln/finn-dev:latest",
				BuildArgs:  map[string]string{"UID": "1000", "GID": "1000", "UNAME": "alice"},
			},
			want: []string{
				"build", "-t", "kiln/finn-dev:latest",
				"--build-arg", "GID=1000",
				"--build-arg", "UID=1000",
				"--build-arg", "UNAME=alice",
				"/tmp/ctx",
			},
		},
		{
			name: "secret args by name only",
			opts: BuildOptions{
				ContextDir: "/tmp/ctx",
				Tag:        "kiln/finn-dev:latest",
				BuildArgs:  map[string]string{"UID": "1000"},
				SecretArgs: map[string]string{"PASSWD": "hunter2", "API_TOKEN": "sekrit"},
			},
			want: []string{
				"build", "-t", "kiln/finn-dev:latest",
				"--build-arg", "UID=1000",
				"--build-arg", "API_TOKEN",
				"--build-arg", "PASSWD",
				"/tmp/ctx",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := engine.BuildArgs(tt.opts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildArgs_Deterministic(t *testing.T) {
	t.Parallel()

	engine := NewBaseCLIEngine("docker")
	opts := BuildOptions{
		ContextDir: "/tmp/ctx",
		Tag:        "kiln/finn-dev:latest",
		BuildArgs: map[string]string{
			"GID": "1000", "GNAME": "devs", "UID": "1000", "UNAME": "alice",
			"JUPYTER_PORT": "8888", "NETRON_PORT": "8081",
		},
	}

	first := engine.BuildArgs(opts)
	for i := 0; i < 20; i++ {
		if got := engine.BuildArgs(opts); !reflect.DeepEqual(got, first) {
			t.Fatalf("BuildArgs() not deterministic: %v vs %v", got, first)
		}
	}
}

func TestBuild_ValidatesOptions(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	engine := newTestEngine(rec, t)

	err := engine.Build(context.Background(), BuildOptions{})
	if !errors.Is(err, ErrInvalidBuildOptions) {
		t.Fatalf("Build() with empty options = %v, want ErrInvalidBuildOptions", err)
	}
	rec.AssertInvocationCount(t, 0)
}

func TestBuild_RunsEngine(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	rec.Stdout = "Successfully built abc123\n"
	engine := newTestEngine(rec, t)

	var out bytes.Buffer
	opts := BuildOptions{
		ContextDir: "/tmp/ctx",
		Dockerfile: "Dockerfile",
		Tag:        "kiln/finn-dev:latest",
		BuildArgs:  map[string]string{"UID": "1000"},
		SecretArgs: map[string]string{"PASSWD": "hunter2"},
		Stdout:     &out,
	}

	if err := engine.Build(context.Background(), opts); err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	rec.AssertInvocationCount(t, 1)
	wantArgs := []string{
		"build", "-f", "/tmp/ctx/Dockerfile", "-t", "kiln/finn-dev:latest",
		"--build-arg", "UID=1000",
		"--build-arg", "PASSWD",
		"/tmp/ctx",
	}
	if got := rec.LastArgs(); !reflect.DeepEqual(got, wantArgs) {
		t.Errorf("engine args = %v, want %v", got, wantArgs)
	}

	if !strings.Contains(out.String(), "Successfully built") {
		t.Errorf("build output not forwarded to Stdout, got %q", out.String())
	}
}

func TestBuild_SecretValuesGoThroughEnv(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	engine := newTestEngine(rec, t)

	opts := BuildOptions{
		ContextDir: "/tmp/ctx",
		Tag:        "kiln/finn-dev:latest",
		SecretArgs: map[string]string{"PASSWD": "hunter2", "ROOT_PASSWD": "changeme"},
	}

	if err := engine.Build(context.Background(), opts); err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	for _, arg := range rec.LastArgs() {
		if strings.Contains(arg, "hunter2") || strings.Contains(arg, "changeme") {
			t.Errorf("secret value leaked into argv: %q", arg)
		}
	}

	cmd := rec.LastCmd()
	if cmd == nil {
		t.Fatal("no command was created")
	}
	if !slices.Contains(cmd.Env, "PASSWD=hunter2") {
		t.Error("PASSWD value should be passed through the command env")
	}
	if !slices.Contains(cmd.Env, "ROOT_PASSWD=changeme") {
		t.Error("ROOT_PASSWD value should be passed through the command env")
	}
	// Appending secrets must not clobber the env the command already had.
	if !slices.Contains(cmd.Env, "GO_WANT_HELPER_PROCESS=1") {
		t.Error("existing command env entries should be preserved")
	}
}

func TestBuild_Failure(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	rec.ExitCode = 1
	rec.Stderr = "ERROR: failed to solve: base image not found"
	engine := newTestEngine(rec, t)

	err := engine.Build(context.Background(), BuildOptions{
		ContextDir: "/tmp/ctx",
		Tag:        "kiln/finn-dev:latest",
	})
	if err == nil {
		t.Fatal("Build() should fail when the engine exits non-zero")
	}

	var actionable *issue.ActionableError
	if !errors.As(err, &actionable) {
		t.Fatalf("Build() error should be actionable, got %T: %v", err, err)
	}
	if actionable.Operation != "build recipe image" {
		t.Errorf("Operation = %q", actionable.Operation)
	}
	if !actionable.HasSuggestions() {
		t.Error("build failure should carry suggestions")
	}
}

func TestRemoveImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		force bool
		want  []string
	}{
		{"plain", false, []string{"rmi", "kiln/finn-dev:latest"}},
		{"forced", true, []string{"rmi", "-f", "kiln/finn-dev:latest"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := NewMockCommandRecorder()
			engine := newTestEngine(rec, t)

			if err := engine.RemoveImage(context.Background(), "kiln/finn-dev:latest", tt.force); err != nil {
				t.Fatalf("RemoveImage() returned error: %v", err)
			}
			if got := rec.LastArgs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("engine args = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemoveImage_InvalidTag(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	engine := newTestEngine(rec, t)

	err := engine.RemoveImage(context.Background(), ImageTag(""), false)
	if !errors.Is(err, ErrInvalidImageTag) {
		t.Fatalf("RemoveImage(\"\") = %v, want ErrInvalidImageTag", err)
	}
	rec.AssertInvocationCount(t, 0)
}

func TestInspectImage(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	rec.Stdout = `[{"Id":"sha256:abc123"}]`
	engine := newTestEngine(rec, t)

	out, err := engine.InspectImage(context.Background(), "kiln/finn-dev:latest")
	if err != nil {
		t.Fatalf("InspectImage() returned error: %v", err)
	}
	if !strings.Contains(out, "sha256:abc123") {
		t.Errorf("InspectImage() output = %q", out)
	}

	want := []string{"image", "inspect", "kiln/finn-dev:latest"}
	if got := rec.LastArgs(); !reflect.DeepEqual(got, want) {
		t.Errorf("inspect args = %v, want %v", got, want)
	}
}

func TestRunCommandWithOutput(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	rec.Stdout = "28.0.1\n"
	engine := newTestEngine(rec, t)

	out, err := engine.RunCommandWithOutput(context.Background(), "version", "--format", "{{.Server.Version}}")
	if err != nil {
		t.Fatalf("RunCommandWithOutput() returned error: %v", err)
	}
	if out != "28.0.1\n" {
		t.Errorf("output = %q, want %q", out, "28.0.1\n")
	}
}

func TestRunCommandStatus_Failure(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	rec.ExitCode = 125
	engine := newTestEngine(rec, t)

	err := engine.RunCommandStatus(context.Background(), "image", "inspect", "missing:latest")
	if err == nil {
		t.Fatal("RunCommandStatus() should propagate non-zero exit")
	}
	if !strings.Contains(err.Error(), "docker") {
		t.Errorf("error should name the binary, got: %v", err)
	}
}
