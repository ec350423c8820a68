// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package scope implements the nested binding environment used while
// resolving a document.
//
// A Stack holds frames. Entering an evaluation unit pushes a frame and the
// returned Handle pops it again. Lookups walk from the innermost frame
// outwards, so an inner binding shadows an outer binding with the same name
// and kind. Bindings of one kind never satisfy lookups for another kind.
package scope

import (
	"errors"
	"fmt"

	"github.com/mongodb/genny-sub000/internal/node"
)

var (
	// ErrUnbound is returned when no frame holds a binding for a name.
	ErrUnbound = errors.New("unbound reference")
	// ErrNoFrame is returned when inserting into a stack with no open frame.
	ErrNoFrame = errors.New("no open scope frame")
)

// Kind separates binding namespaces.
type Kind int

const (
	Parameter Kind = iota
	ActorTemplate
)

func (k Kind) String() string {
	switch k {
	case Parameter:
		return "parameter"
	case ActorTemplate:
		return "actor template"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type binding struct {
	name  string
	kind  Kind
	value *node.Node
}

// frame is an ordered list of bindings. Later bindings win over earlier ones
// with the same name and kind.
type frame struct {
	bindings []binding
}

func (f *frame) lookup(name string, kind Kind) (*node.Node, bool) {
	for i := len(f.bindings) - 1; i >= 0; i-- {
		b := f.bindings[i]
		if b.name == name && b.kind == kind {
			return b.value, true
		}
	}
	return nil, false
}

// Stack is a stack of frames. The zero value is an empty stack ready to use.
// A Stack belongs to a single resolution run and is not safe for concurrent
// use.
type Stack struct {
	frames []*frame
}

// New returns an empty stack.
func New() *Stack {
	return &Stack{}
}

// Handle releases the frame pushed by Enter.
type Handle struct {
	stack *Stack
	depth int
}

// Enter pushes an empty frame. Callers release it with Close, usually via
// defer so that the frame is popped on error paths too.
func (s *Stack) Enter() *Handle {
	s.frames = append(s.frames, &frame{})
	return &Handle{stack: s, depth: len(s.frames)}
}

// Close pops the frame pushed by the matching Enter, along with any frame
// pushed after it that was not closed. Closing twice is a no-op.
func (h *Handle) Close() {
	if h == nil || h.stack == nil {
		return
	}
	if len(h.stack.frames) >= h.depth {
		clear(h.stack.frames[h.depth-1:])
		h.stack.frames = h.stack.frames[:h.depth-1]
	}
	h.stack = nil
}

// Insert binds name in the innermost frame.
func (s *Stack) Insert(name string, kind Kind, value *node.Node) error {
	if len(s.frames) == 0 {
		return fmt.Errorf("cannot bind %s %q: %w", kind, name, ErrNoFrame)
	}
	f := s.frames[len(s.frames)-1]
	f.bindings = append(f.bindings, binding{name: name, kind: kind, value: value})
	return nil
}

// Lookup returns the innermost binding for name and kind.
func (s *Stack) Lookup(name string, kind Kind) (*node.Node, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].lookup(name, kind); ok {
			return v, true
		}
	}
	return nil, false
}

// Get is Lookup that reports a missing binding as ErrUnbound.
func (s *Stack) Get(name string, kind Kind) (*node.Node, error) {
	if v, ok := s.Lookup(name, kind); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%s %q: %w", kind, name, ErrUnbound)
}

// Depth returns the number of open frames.
func (s *Stack) Depth() int {
	return len(s.frames)
}
