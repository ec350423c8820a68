// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package node

import (
	"iter"
	"slices"
)

// Mapping is an insertion-ordered string-keyed map of nodes.
type Mapping struct {
	keys   []string
	values map[string]*Node
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]*Node)}
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (*Node, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores value under key. An existing key keeps its position.
func (m *Mapping) Set(key string, value *Node) {
	if value == nil {
		value = Null()
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// InsertAt stores value under key at position index, moving the key if it
// already exists. Out of range indexes are clamped.
func (m *Mapping) InsertAt(index int, key string, value *Node) {
	if value == nil {
		value = Null()
	}
	if _, ok := m.values[key]; ok {
		m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
	}
	index = max(0, min(index, len(m.keys)))
	m.keys = slices.Insert(m.keys, index, key)
	m.values[key] = value
}

// Delete removes key and reports whether it was present.
func (m *Mapping) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
	return true
}

// Index returns the position of key, or -1.
func (m *Mapping) Index(key string) int {
	if m == nil {
		return -1
	}
	return slices.Index(m.keys, key)
}

// Keys returns a copy of the keys in order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// All iterates the entries in order.
func (m *Mapping) All() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}
