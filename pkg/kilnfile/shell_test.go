// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"testing"

	"kiln-cli/pkg/types"
)

func TestShellLine_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    ShellLine
		wantErr bool
	}{
		{"source line", ShellLine("source /opt/vendor/settings.sh"), false},
		{"prompt line", ShellLine(`export PS1='\[\033[1;36m\]\u@\h:\w\$ '`), false},
		{"placeholder line", ShellLine(`echo "welcome ${UNAME}"`), false},
		{"redirect", ShellLine(`echo "StrictHostKeyChecking no" >> /etc/ssh/ssh_config`), false},
		{"empty", ShellLine(""), true},
		{"blank", ShellLine("   "), true},
		{"multi line", ShellLine("echo a\necho b"), true},
		{"unterminated quote", ShellLine(`echo "unterminated`), true},
		{"dangling if", ShellLine("if [ -f /x ]; then"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.line.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ShellLine(%q).Validate() returned nil, want error", tt.line)
				}
				if !errors.Is(err, ErrInvalidShellLine) {
					t.Errorf("error should wrap ErrInvalidShellLine, got: %v", err)
				}
				var slErr *InvalidShellLineError
				if !errors.As(err, &slErr) {
					t.Errorf("error should be *InvalidShellLineError, got: %T", err)
				}
			} else if err != nil {
				t.Errorf("ShellLine(%q).Validate() returned unexpected error: %v", tt.line, err)
			}
		})
	}
}

func TestShell_RCFilePath(t *testing.T) {
	t.Parallel()

	s := &Shell{}
	if got := s.RCFilePath("/home/alice"); got != types.FilesystemPath("/home/alice/.bashrc") {
		t.Errorf("RCFilePath() = %q, want /home/alice/.bashrc", got)
	}

	s.RCFile = "/etc/profile.d/kiln.sh"
	if got := s.RCFilePath("/home/alice"); got != types.FilesystemPath("/etc/profile.d/kiln.sh") {
		t.Errorf("RCFilePath() with override = %q, want /etc/profile.d/kiln.sh", got)
	}
}

func TestShell_Validate(t *testing.T) {
	t.Parallel()

	s := &Shell{RCFile: "relative/.bashrc"}
	if err := s.validate(); err == nil {
		t.Error("validate() should reject a relative rc_file")
	}

	s = &Shell{RC: []ShellLine{"echo ok", ""}}
	if err := s.validate(); !errors.Is(err, ErrInvalidShellLine) {
		t.Errorf("validate() error = %v, want ErrInvalidShellLine", err)
	}
}
