// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"github.com/mongodb/genny-sub000/internal/node"
)

// flattenOnce resolves {^FlattenOnce: payload}.
//
//   - sequence: elements are resolved and any element that is itself a
//     sequence is spliced into the result, one level deep
//   - mapping: the sequence of its keys
//   - string: the sequence of its characters
//
// A payload that is a macro is evaluated first and its result flattened.
func (w *walker) flattenOnce(payload *node.Node, p *Path) (*node.Node, error) {
	target, resolved := payload, false
	if m := payload.Mapping(); m != nil {
		c, err := classify(m, p)
		if err != nil {
			return nil, err
		}
		if c.kind != plainNode {
			if target, err = w.expand(c, p); err != nil {
				return nil, err
			}
			resolved = true
		}
	}

	switch target.Kind() {
	case node.SequenceKind:
		var out []*node.Node
		for i, item := range target.Items() {
			r := item
			if !resolved {
				var err error
				if r, err = w.resolve(item, p.Index(i)); err != nil {
					return nil, err
				}
			}
			if r.Kind() == node.SequenceKind {
				out = append(out, r.Items()...)
				continue
			}
			out = append(out, r)
		}
		return node.Seq(out...), nil

	case node.MappingKind:
		keys := target.Mapping().Keys()
		out := make([]*node.Node, len(keys))
		for i, k := range keys {
			out[i] = node.String(k)
		}
		return node.Seq(out...), nil

	case node.StringKind:
		s, _ := target.AsString()
		out := make([]*node.Node, 0, len(s))
		for _, r := range s {
			out = append(out, node.String(string(r)))
		}
		return node.Seq(out...), nil

	default:
		return nil, invalidArgument(p, "can only flatten a sequence, mapping or string, got %s", target.Kind())
	}
}
