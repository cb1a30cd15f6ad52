// SPDX-License-Identifier: MPL-2.0

// Package testutil holds process-state helpers for tests: working
// directory, environment, and home directory changes that hand back a
// restore function. Tests that need restoration mid-test call it
// directly; the rest defer it.
package testutil

import (
	"os"
	"runtime"
	"testing"
)

// MustChdir changes into dir and returns a function restoring the
// previous working directory. Failures end the test immediately.
func MustChdir(t testing.TB, dir string) func() {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	return func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("failed to restore directory to %s: %v", prev, err)
		}
	}
}

// MustSetenv sets key to value and returns a function restoring the
// prior state, unsetting the variable if it was absent.
func MustSetenv(t testing.TB, key, value string) func() {
	t.Helper()
	prev, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	return restoreEnv(t, key, prev, had)
}

// MustUnsetenv clears key and returns a function restoring the prior
// value, if there was one.
func MustUnsetenv(t testing.TB, key string) func() {
	t.Helper()
	prev, had := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	return restoreEnv(t, key, prev, had)
}

// MustMkdirAll creates path with any missing parents.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// SetHomeDir points the platform home variable (USERPROFILE on windows,
// HOME elsewhere) at dir and returns the restore function.
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()
	key := "HOME"
	if runtime.GOOS == "windows" {
		key = "USERPROFILE"
	}
	return MustSetenv(t, key, dir)
}

// restoreEnv builds the cleanup function shared by the env helpers.
func restoreEnv(t testing.TB, key, prev string, had bool) func() {
	return func() {
		var err error
		if had {
			err = os.Setenv(key, prev)
		} else {
			err = os.Unsetenv(key)
		}
		if err != nil {
			t.Errorf("failed to restore env %s: %v", key, err)
		}
	}
}
