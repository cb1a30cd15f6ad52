// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// isFatalWatchError reports whether an fsnotify error means the watcher
// cannot recover and Run should return. On Linux these are the inotify
// resource exhaustion errors:
//   - ENOSPC: inotify watch limit hit (fs.inotify.max_user_watches)
//   - EMFILE: per-process file descriptor limit hit
//   - ENFILE: system-wide file descriptor limit hit
//
// Anything else (a permission error on one directory, say) is transient
// and only worth a warning.
func isFatalWatchError(err error) bool {
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}
