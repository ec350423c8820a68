// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package node defines the generic document tree the preprocessor operates on.
//
// A Node is one of null, bool, int, float, string, sequence or mapping.
// Mappings keep their insertion order and never hold the same key twice.
// Scalars are immutable; containers are only modified while a tree is being
// built and are treated as read-only afterwards.
package node

import (
	"fmt"
	"strconv"
)

// Kind identifies the shape of a Node.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	SequenceKind
	MappingKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case StringKind:
		return "string"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is a single value in a document tree. A nil *Node reads as null.
type Node struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	items []*Node
	m     *Mapping
}

// Pair is a key/value entry used to build mappings.
type Pair struct {
	Key   string
	Value *Node
}

// Null returns a null node.
func Null() *Node { return &Node{kind: NullKind} }

// Bool returns a boolean node.
func Bool(b bool) *Node { return &Node{kind: BoolKind, b: b} }

// Int returns an integer node.
func Int(i int64) *Node { return &Node{kind: IntKind, i: i} }

// Float returns a floating point node.
func Float(f float64) *Node { return &Node{kind: FloatKind, f: f} }

// String returns a string node.
func String(s string) *Node { return &Node{kind: StringKind, s: s} }

// Seq returns a sequence node holding items in order.
func Seq(items ...*Node) *Node {
	if items == nil {
		items = []*Node{}
	}
	return &Node{kind: SequenceKind, items: items}
}

// Map returns a mapping node built from pairs. A repeated key keeps the
// position of its first occurrence and the value of its last.
func Map(pairs ...Pair) *Node {
	m := NewMapping()
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return &Node{kind: MappingKind, m: m}
}

// FromMapping wraps an existing mapping in a node.
func FromMapping(m *Mapping) *Node {
	if m == nil {
		m = NewMapping()
	}
	return &Node{kind: MappingKind, m: m}
}

// Kind reports the node's shape.
func (n *Node) Kind() Kind {
	if n == nil {
		return NullKind
	}
	return n.kind
}

// IsNull reports whether n is null or nil.
func (n *Node) IsNull() bool { return n.Kind() == NullKind }

// IsScalar reports whether the node is neither a sequence nor a mapping.
func (n *Node) IsScalar() bool {
	k := n.Kind()
	return k != SequenceKind && k != MappingKind
}

// AsBool returns the value of a bool node.
func (n *Node) AsBool() (bool, bool) {
	if n.Kind() != BoolKind {
		return false, false
	}
	return n.b, true
}

// AsInt returns the value of an int node.
func (n *Node) AsInt() (int64, bool) {
	if n.Kind() != IntKind {
		return 0, false
	}
	return n.i, true
}

// AsFloat returns the value of a float node.
func (n *Node) AsFloat() (float64, bool) {
	if n.Kind() != FloatKind {
		return 0, false
	}
	return n.f, true
}

// AsString returns the value of a string node.
func (n *Node) AsString() (string, bool) {
	if n.Kind() != StringKind {
		return "", false
	}
	return n.s, true
}

// IsNumber reports whether the node is an int or a float.
func (n *Node) IsNumber() bool {
	k := n.Kind()
	return k == IntKind || k == FloatKind
}

// Items returns the elements of a sequence, or nil for any other kind.
// The returned slice must not be modified.
func (n *Node) Items() []*Node {
	if n.Kind() != SequenceKind {
		return nil
	}
	return n.items
}

// Mapping returns the entries of a mapping, or nil for any other kind.
func (n *Node) Mapping() *Mapping {
	if n.Kind() != MappingKind {
		return nil
	}
	return n.m
}

// Get returns the value stored under key when n is a mapping.
func (n *Node) Get(key string) (*Node, bool) {
	m := n.Mapping()
	if m == nil {
		return nil, false
	}
	return m.Get(key)
}

// Len returns the number of children of a container and 0 for scalars.
func (n *Node) Len() int {
	switch n.Kind() {
	case SequenceKind:
		return len(n.items)
	case MappingKind:
		return n.m.Len()
	default:
		return 0
	}
}

// Scalar renders a scalar node the way it would appear as plain text.
// Containers render as their kind name.
func (n *Node) Scalar() string {
	switch n.Kind() {
	case NullKind:
		return "null"
	case BoolKind:
		return strconv.FormatBool(n.b)
	case IntKind:
		return strconv.FormatInt(n.i, 10)
	case FloatKind:
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	case StringKind:
		return n.s
	default:
		return n.kind.String()
	}
}

// Interface converts the tree into plain Go values: nil, bool, int64,
// float64, string, []any and map[string]any. Mapping order is lost.
func (n *Node) Interface() any {
	switch n.Kind() {
	case NullKind:
		return nil
	case BoolKind:
		return n.b
	case IntKind:
		return n.i
	case FloatKind:
		return n.f
	case StringKind:
		return n.s
	case SequenceKind:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.Interface()
		}
		return out
	default:
		out := make(map[string]any, n.m.Len())
		for k, v := range n.m.All() {
			out[k] = v.Interface()
		}
		return out
	}
}

// String implements fmt.Stringer with a compact flow rendering, used in
// log lines and error messages.
func (n *Node) String() string {
	switch n.Kind() {
	case StringKind:
		return strconv.Quote(n.s)
	case SequenceKind:
		s := "["
		for i, item := range n.items {
			if i > 0 {
				s += ", "
			}
			s += item.String()
		}
		return s + "]"
	case MappingKind:
		s := "{"
		i := 0
		for k, v := range n.m.All() {
			if i > 0 {
				s += ", "
			}
			s += k + ": " + v.String()
			i++
		}
		return s + "}"
	default:
		return n.Scalar()
	}
}
