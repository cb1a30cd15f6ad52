// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 error codes surfaced by ReadDirectoryChangesW. There is no
// inotify-style watch limit on Windows, but these codes still leave the
// watcher with no working handle to continue from.
const (
	// ERROR_TOO_MANY_OPEN_FILES (4): per-process handle limit hit.
	errnoTooManyOpenFiles = syscall.Errno(4)
	// ERROR_INVALID_HANDLE (6): the watched directory was deleted or
	// unmounted, invalidating the handle.
	errnoInvalidHandle = syscall.Errno(6)
	// ERROR_NOT_ENOUGH_MEMORY (8): no memory for the notification buffer.
	errnoNotEnoughMemory = syscall.Errno(8)
)

// isFatalWatchError reports whether an fsnotify error means the watcher
// cannot recover and Run should return.
func isFatalWatchError(err error) bool {
	return errors.Is(err, errnoTooManyOpenFiles) ||
		errors.Is(err, errnoInvalidHandle) ||
		errors.Is(err, errnoNotEnoughMemory)
}
