// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"fmt"
	"path"

	"kiln-cli/pkg/types"
)

// DefaultAdminGroup is the supplementary group granting administrative
// rights when the kilnfile does not name one.
const DefaultAdminGroup = "sudo"

// DefaultWorkspace is the directory symlinked into the account's home when
// the kilnfile does not name one.
const DefaultWorkspace = types.FilesystemPath("/workspace")

// Account describes the unprivileged user the image is finalized for. The
// group is created first, then the user, so group membership can be granted
// at creation time. Identity fields normally reference ${NAME} args so the
// same recipe serves different operators.
type Account struct {
	GID   string `json:"gid"`
	Group string `json:"group"`
	UID   string `json:"uid"`
	User  string `json:"user"`

	// Password for the new account. Normally a secret arg reference.
	Password string `json:"password,omitempty"`

	// RootPassword, when set, changes the root password as well.
	RootPassword string `json:"root_password,omitempty"`

	// AdminGroup is the supplementary group granting administrative rights.
	AdminGroup string `json:"admin_group"`

	// Workspace is symlinked into the account's home and handed over to
	// the account together with the home itself.
	Workspace types.FilesystemPath `json:"workspace"`

	// Home overrides the default /home/<user>.
	Home types.FilesystemPath `json:"home,omitempty"`

	// Shell is the login shell. Empty means the useradd system default.
	Shell string `json:"shell,omitempty"`
}

// HomePath returns the account's home directory, defaulting to /home/<user>
// when no override is set.
func (a *Account) HomePath() types.FilesystemPath {
	if a.Home != "" {
		return a.Home
	}
	return types.FilesystemPath(path.Join("/home", a.User))
}

func (a *Account) validate() error {
	for _, field := range []struct {
		name, value string
	}{
		{"gid", a.GID},
		{"group", a.Group},
		{"uid", a.UID},
		{"user", a.User},
		{"admin_group", a.AdminGroup},
	} {
		if field.value == "" {
			return fmt.Errorf("account %s must not be empty", field.name)
		}
	}
	if !a.Workspace.IsAbs() {
		return fmt.Errorf("account workspace %q must be absolute", a.Workspace)
	}
	if a.Home != "" && !a.Home.IsAbs() {
		return fmt.Errorf("account home %q must be absolute", a.Home)
	}
	return nil
}
