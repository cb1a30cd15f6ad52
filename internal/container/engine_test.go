// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"testing"
)

func TestEngineType_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   EngineType
		wantErr bool
	}{
		{"docker", EngineTypeDocker, false},
		{"podman", EngineTypePodman, false},
		{"auto", EngineTypeAuto, false},
		{"zero value means auto", EngineType(""), false},
		{"unknown engine", EngineType("lxc"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.value.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() returned unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() returned nil, want error")
			}
			if !errors.Is(err, ErrInvalidEngineType) {
				t.Errorf("error should wrap ErrInvalidEngineType, got: %v", err)
			}
			var etErr *InvalidEngineTypeError
			if !errors.As(err, &etErr) {
				t.Fatalf("error should be *InvalidEngineTypeError, got: %T", err)
			}
			if etErr.Value != tt.value {
				t.Errorf("InvalidEngineTypeError.Value = %q, want %q", etErr.Value, tt.value)
			}
		})
	}
}

func TestNewEngine_InvalidType(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(EngineType("lxc"))
	if !errors.Is(err, ErrInvalidEngineType) {
		t.Fatalf("NewEngine(lxc) = %v, want ErrInvalidEngineType", err)
	}
}

func TestNewEngine_HonorsPreference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		preferred EngineType
		want      string
	}{
		{"docker preferred", EngineTypeDocker, "docker"},
		{"podman preferred", EngineTypePodman, "podman"},
		{"auto prefers docker", EngineTypeAuto, "docker"},
		{"zero value prefers docker", EngineType(""), "docker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := NewMockCommandRecorder()

			// Both engines resolve and respond, so preference decides.
			engine, err := NewEngine(tt.preferred,
				WithBinaryPath("engine-bin"),
				WithExecCommand(rec.CommandFunc(t)),
			)
			if err != nil {
				t.Fatalf("NewEngine() returned error: %v", err)
			}
			if engine.Name() != tt.want {
				t.Errorf("engine.Name() = %q, want %q", engine.Name(), tt.want)
			}
		})
	}
}

func TestPickEngine_FallsBackToAvailable(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	unavailable := NewDockerEngine(WithBinaryPath(""))
	available := NewPodmanEngine(
		WithBinaryPath("engine-bin"),
		WithExecCommand(rec.CommandFunc(t)),
	)

	engine, err := pickEngine(EngineTypeDocker, unavailable, available)
	if err != nil {
		t.Fatalf("pickEngine() returned error: %v", err)
	}
	if engine.Name() != "podman" {
		t.Errorf("engine.Name() = %q, want fallback to podman", engine.Name())
	}
}

func TestNewEngine_NoneAvailable(t *testing.T) {
	// Point PATH at an empty directory so neither binary resolves.
	t.Setenv("PATH", t.TempDir())

	_, err := NewEngine(EngineTypeAuto)
	if !errors.Is(err, ErrEngineNotAvailable) {
		t.Fatalf("NewEngine() = %v, want ErrEngineNotAvailable", err)
	}

	var naErr *EngineNotAvailableError
	if !errors.As(err, &naErr) {
		t.Fatalf("error should be *EngineNotAvailableError, got: %T", err)
	}
	if naErr.Engine != EngineTypeAuto {
		t.Errorf("EngineNotAvailableError.Engine = %q, want %q", naErr.Engine, EngineTypeAuto)
	}
}
