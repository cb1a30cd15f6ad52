// SPDX-License-Identifier: MPL-2.0

package cueutil_test

import (
	"errors"
	"strings"
	"testing"

	"kiln-cli/pkg/cueutil"
)

func TestFormatError_NilError(t *testing.T) {
	t.Parallel()

	if err := cueutil.FormatError(nil, "kilnfile.cue"); err != nil {
		t.Errorf("FormatError(nil) = %v, want nil", err)
	}
}

func TestFormatError_PlainError(t *testing.T) {
	t.Parallel()

	err := cueutil.FormatError(errors.New("boom"), "kilnfile.cue")
	if err == nil {
		t.Fatal("FormatError() = nil, want error")
	}
	if !strings.Contains(err.Error(), "kilnfile.cue") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("FormatError() = %q, want file path and message", err)
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	data := make([]byte, 100)

	if err := cueutil.CheckFileSize(data, 200, "ok.cue"); err != nil {
		t.Errorf("CheckFileSize() under limit returned error: %v", err)
	}
	if err := cueutil.CheckFileSize(data, 50, "big.cue"); err == nil {
		t.Error("CheckFileSize() over limit returned nil")
	}
}
