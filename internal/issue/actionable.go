// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a failure with enough context to tell the user
	// what to do about it: the operation that failed, the resource
	// involved, and concrete remediation suggestions. Cause is preserved
	// for errors.Is and errors.As.
	//
	// Construct one through the ErrorContext builder:
	//
	//	return issue.NewErrorContext().
	//		WithOperation("load kilnfile").
	//		WithResource(path).
	//		WithSuggestion("Run 'kiln init' to create one").
	//		Wrap(err).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase naming what was attempted, like
		// "load kilnfile" or "resolve dependency pins".
		Operation string

		// Resource is the file, image, or entity involved. Optional.
		Resource string

		// Suggestions are remediation hints, one per line in output.
		Suggestions []string

		// Cause is the underlying error. Optional.
		Cause error
	}

	// ErrorContext accumulates ActionableError fields fluently. A context
	// can be prepared up front and finished with Wrap + Build once the
	// failure arrives.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext creates an empty ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error implements the error interface with the concise single-line form.
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause for errors.Is and errors.As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error for terminal output: the single-line message,
// a bulleted suggestion list, and, when verbose, the numbered cause chain.
func (e *ActionableError) Format(verbose bool) string {
	var out strings.Builder
	out.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		out.WriteString("\n")
		for _, s := range e.Suggestions {
			out.WriteString("\n  • ")
			out.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		out.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&out, "\n  %d. %s", depth, err)
		}
	}

	return out.String()
}

// HasSuggestions reports whether any remediation hints are attached.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// WithOperation sets the verb phrase naming the attempted operation.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithResource sets the file, image, or entity involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithSuggestion appends one remediation hint.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sug)
	return c
}

// WithSuggestions appends several remediation hints at once.
func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sugs...)
	return c
}

// Wrap records the underlying error as the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build finalizes the ActionableError. It returns nil when no operation
// was set; the operation is the one required field.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	built := c.err
	return &built
}

// BuildError is Build returning the error interface, for use directly in
// return statements. A nil *ActionableError must not escape as a non-nil
// error value.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
