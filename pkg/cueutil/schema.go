// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Schema is an embedded CUE schema bound to one root definition. It holds
// the source rather than a compiled value: each Decode call compiles into
// a fresh context, since cue values from different contexts must not mix.
type Schema struct {
	src  []byte
	root string
}

// NewSchema verifies that src compiles and that the root definition exists,
// then returns a Schema ready for Decode.
func NewSchema(src []byte, root string) (*Schema, error) {
	s := &Schema{src: src, root: root}
	if _, err := s.compile(cuecontext.New()); err != nil {
		return nil, err
	}
	return s, nil
}

// MustSchema is NewSchema for embedded sources that are known to be valid.
// It panics on error and is intended for package-level initialization.
func MustSchema(src []byte, root string) *Schema {
	s, err := NewSchema(src, root)
	if err != nil {
		panic(fmt.Sprintf("cueutil: invalid embedded schema: %v", err))
	}
	return s
}

func (s *Schema) compile(ctx *cue.Context) (cue.Value, error) {
	compiled := ctx.CompileBytes(s.src)
	if compiled.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", compiled.Err())
	}

	rootValue := compiled.LookupPath(cue.ParsePath(s.root))
	if rootValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", s.root, rootValue.Err())
	}
	return rootValue, nil
}
