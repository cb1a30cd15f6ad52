// SPDX-License-Identifier: MPL-2.0

// Package kilnfiletest builds kilnfile models for tests: a minimal valid
// recipe extended through functional options, plus the canonical fixture
// used by plan, render, apply, and verify tests.
package kilnfiletest
