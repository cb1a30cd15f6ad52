// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"strings"
	"testing"

	"kiln-cli/pkg/types"
)

func validAccount() Account {
	return Account{
		GID:        "${GID}",
		Group:      "${GNAME}",
		UID:        "${UID}",
		User:       "${UNAME}",
		AdminGroup: "sudo",
		Workspace:  "/workspace",
	}
}

func TestAccount_HomePath(t *testing.T) {
	t.Parallel()

	a := Account{User: "alice"}
	if got := a.HomePath(); got != types.FilesystemPath("/home/alice") {
		t.Errorf("HomePath() = %q, want /home/alice", got)
	}

	a.Home = "/srv/alice"
	if got := a.HomePath(); got != types.FilesystemPath("/srv/alice") {
		t.Errorf("HomePath() with override = %q, want /srv/alice", got)
	}
}

func TestAccount_Validate(t *testing.T) {
	t.Parallel()

	a := validAccount()
	if err := a.validate(); err != nil {
		t.Errorf("validate() returned unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Account)
		wantSub string
	}{
		{"missing gid", func(a *Account) { a.GID = "" }, "gid"},
		{"missing group", func(a *Account) { a.Group = "" }, "group"},
		{"missing uid", func(a *Account) { a.UID = "" }, "uid"},
		{"missing user", func(a *Account) { a.User = "" }, "user"},
		{"missing admin group", func(a *Account) { a.AdminGroup = "" }, "admin_group"},
		{"relative workspace", func(a *Account) { a.Workspace = "workspace" }, "workspace"},
		{"relative home", func(a *Account) { a.Home = "home/alice" }, "home"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := validAccount()
			tt.mutate(&a)
			err := a.validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("validate() error = %v, want mention of %q", err, tt.wantSub)
			}
		})
	}
}
