// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// startWatcher runs w in the background and returns a channel carrying
// Run's result plus a cancel that stops it.
func startWatcher(t *testing.T, w *Watcher) (<-chan error, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- w.Run(ctx) }()
	// Give the event loop a moment to start draining.
	time.Sleep(50 * time.Millisecond)
	return runDone, cancel
}

func waitForStop(t *testing.T, runDone <-chan error) {
	t.Helper()
	select {
	case err := <-runDone:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Run to stop")
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	cb := func(context.Context, []string) error { return nil }

	if _, err := New(nil, cb); err == nil {
		t.Error("New with no files returned nil error")
	}
	if _, err := New([]string{"kilnfile.cue"}, nil); err == nil {
		t.Error("New with nil callback returned nil error")
	}
}

func TestWatcherCoalescesRapidWrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	recipe := filepath.Join(dir, "kilnfile.cue")
	writeFile(t, recipe, "v0")

	var calls atomic.Int32
	done := make(chan []string, 1)
	w, err := New([]string{recipe}, func(_ context.Context, changed []string) error {
		calls.Add(1)
		done <- changed
		return nil
	}, WithDebounce(100*time.Millisecond), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	runDone, cancel := startWatcher(t, w)
	defer cancel()

	for i := 0; i < 3; i++ {
		writeFile(t, recipe, "v1")
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case changed := <-done:
		if len(changed) != 1 || changed[0] != recipe {
			t.Errorf("changed = %v, want [%s]", changed, recipe)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}

	// The burst has settled, so no further invocations should arrive.
	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}

	cancel()
	waitForStop(t, runDone)
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	recipe := filepath.Join(dir, "kilnfile.cue")
	sibling := filepath.Join(dir, "notes.txt")
	writeFile(t, recipe, "v0")

	done := make(chan []string, 1)
	w, err := New([]string{recipe}, func(_ context.Context, changed []string) error {
		done <- changed
		return nil
	}, WithDebounce(50*time.Millisecond), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	runDone, cancel := startWatcher(t, w)
	defer cancel()

	writeFile(t, sibling, "scratch")
	select {
	case changed := <-done:
		t.Fatalf("callback fired for sibling write: %v", changed)
	case <-time.After(300 * time.Millisecond):
	}

	writeFile(t, recipe, "v1")
	select {
	case changed := <-done:
		if len(changed) != 1 || changed[0] != recipe {
			t.Errorf("changed = %v, want [%s]", changed, recipe)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}

	cancel()
	waitForStop(t, runDone)
}

func TestWatcherReportsAllChangedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.cue")
	recipe := filepath.Join(dir, "kilnfile.cue")
	writeFile(t, argsFile, "v0")
	writeFile(t, recipe, "v0")

	done := make(chan []string, 1)
	w, err := New([]string{recipe, argsFile}, func(_ context.Context, changed []string) error {
		done <- changed
		return nil
	}, WithDebounce(100*time.Millisecond), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	runDone, cancel := startWatcher(t, w)
	defer cancel()

	writeFile(t, recipe, "v1")
	writeFile(t, argsFile, "v1")

	select {
	case changed := <-done:
		want := []string{argsFile, recipe}
		if len(changed) != 2 || changed[0] != want[0] || changed[1] != want[1] {
			t.Errorf("changed = %v, want %v", changed, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}

	cancel()
	waitForStop(t, runDone)
}

func TestWatcherSeesRenameOverSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	recipe := filepath.Join(dir, "kilnfile.cue")
	writeFile(t, recipe, "v0")

	done := make(chan []string, 1)
	w, err := New([]string{recipe}, func(_ context.Context, changed []string) error {
		done <- changed
		return nil
	}, WithDebounce(50*time.Millisecond), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	runDone, cancel := startWatcher(t, w)
	defer cancel()

	// Mimic an editor save: write a temp file, then rename it over the
	// watched path.
	tmp := filepath.Join(dir, "kilnfile.cue.tmp")
	writeFile(t, tmp, "v1")
	if err := os.Rename(tmp, recipe); err != nil {
		t.Fatalf("rename: %v", err)
	}

	select {
	case changed := <-done:
		if len(changed) != 1 || changed[0] != recipe {
			t.Errorf("changed = %v, want [%s]", changed, recipe)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}

	cancel()
	waitForStop(t, runDone)
}

func TestWatcherStopsOnCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	recipe := filepath.Join(dir, "kilnfile.cue")
	writeFile(t, recipe, "v0")

	w, err := New([]string{recipe}, func(context.Context, []string) error {
		return nil
	}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	runDone, cancel := startWatcher(t, w)
	cancel()
	waitForStop(t, runDone)
}

func TestWatcherRunTwice(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	recipe := filepath.Join(dir, "kilnfile.cue")
	writeFile(t, recipe, "v0")

	w, err := New([]string{recipe}, func(context.Context, []string) error {
		return nil
	}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := w.Run(context.Background()); err == nil {
		t.Error("second Run returned nil, want error")
	}
}
