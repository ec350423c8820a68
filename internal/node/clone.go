// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package node

// Clone returns a deep copy of n.
//
// Scalars are immutable and are returned as-is; sequences and mappings are
// copied recursively with pre-sized destinations. A nil node clones to null.
func Clone(n *Node) *Node {
	if n == nil {
		return Null()
	}

	switch n.kind {
	case SequenceKind:
		items := make([]*Node, len(n.items))
		for i, item := range n.items {
			items[i] = Clone(item)
		}
		return &Node{kind: SequenceKind, items: items}

	case MappingKind:
		return FromMapping(CloneMapping(n.m))

	default:
		return n
	}
}

// CloneMapping returns a deep copy of m.
func CloneMapping(m *Mapping) *Mapping {
	if m == nil {
		return NewMapping()
	}
	dst := &Mapping{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]*Node, len(m.keys)),
	}
	copy(dst.keys, m.keys)
	for _, k := range m.keys {
		dst.values[k] = Clone(m.values[k])
	}
	return dst
}

// Equal reports whether a and b are the same tree. Mapping order is
// significant and ints never equal floats.
func Equal(a, b *Node) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case NullKind:
		return true
	case BoolKind:
		return a.b == b.b
	case IntKind:
		return a.i == b.i
	case FloatKind:
		return a.f == b.f
	case StringKind:
		return a.s == b.s
	case SequenceKind:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	default:
		if a.m.Len() != b.m.Len() {
			return false
		}
		for i, k := range a.m.keys {
			if b.m.keys[i] != k || !Equal(a.m.values[k], b.m.values[k]) {
				return false
			}
		}
		return true
	}
}
