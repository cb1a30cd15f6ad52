// SPDX-License-Identifier: MPL-2.0

// Package issue turns kiln failures into actionable guidance.
//
// ActionableError carries the failed operation, the resource involved, and
// remediation suggestions; the fluent ErrorContext builder assembles one at
// the failure site. The registry maps recurring failure classes (missing
// kilnfile, unpinned dependency, lock drift, absent container engine) to
// markdown cards the CLI renders to the terminal.
package issue
