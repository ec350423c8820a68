// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package yamlnode converts between YAML text and node trees.
//
// Decoding goes through yaml.v3's Node API so that mapping order survives.
// Aliases are expanded into independent copies and merge keys (`<<`) are
// applied, so the resulting tree never shares structure.
package yamlnode

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mongodb/genny-sub000/internal/node"
)

const mergeKey = "<<"

// Decode parses a single YAML document. An empty document decodes to null.
func Decode(data []byte) (*node.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind == 0 {
		return node.Null(), nil
	}
	return convert(&doc)
}

func convert(y *yaml.Node) (*node.Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return node.Null(), nil
		}
		return convert(y.Content[0])
	case yaml.AliasNode:
		if y.Alias == nil {
			return nil, fmt.Errorf("line %d: unknown alias %q", y.Line, y.Value)
		}
		return convert(y.Alias)
	case yaml.ScalarNode:
		return convertScalar(y)
	case yaml.SequenceNode:
		items := make([]*node.Node, 0, len(y.Content))
		for _, c := range y.Content {
			item, err := convert(c)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return node.Seq(items...), nil
	case yaml.MappingNode:
		return convertMapping(y)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", y.Line, y.Kind)
	}
}

func convertScalar(y *yaml.Node) (*node.Node, error) {
	switch y.ShortTag() {
	case "!!null":
		return node.Null(), nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", y.Line, err)
		}
		return node.Bool(b), nil
	case "!!int":
		var i int64
		if err := y.Decode(&i); err == nil {
			return node.Int(i), nil
		}
		var f float64
		if err := y.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", y.Line, err)
		}
		return node.Float(f), nil
	case "!!float":
		var f float64
		if err := y.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", y.Line, err)
		}
		return node.Float(f), nil
	default:
		// Strings, timestamps and binary all stay textual.
		return node.String(y.Value), nil
	}
}

func convertMapping(y *yaml.Node) (*node.Node, error) {
	if len(y.Content)%2 != 0 {
		return nil, fmt.Errorf("line %d: malformed mapping", y.Line)
	}

	explicit := make(map[string]bool, len(y.Content)/2)
	for i := 0; i < len(y.Content); i += 2 {
		k := y.Content[i]
		if isMergeKey(k) {
			continue
		}
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
		}
		if explicit[k.Value] {
			return nil, fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
		}
		explicit[k.Value] = true
	}

	m := node.NewMapping()
	for i := 0; i < len(y.Content); i += 2 {
		k, v := y.Content[i], y.Content[i+1]
		if isMergeKey(k) {
			if err := applyMerge(m, v, explicit); err != nil {
				return nil, err
			}
			continue
		}
		value, err := convert(v)
		if err != nil {
			return nil, err
		}
		m.Set(k.Value, value)
	}
	return node.FromMapping(m), nil
}

func isMergeKey(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.Value == mergeKey && k.ShortTag() == "!!merge"
}

// applyMerge copies entries of the merged mapping(s) that the enclosing
// mapping does not define itself. Earlier sources win over later ones.
func applyMerge(dst *node.Mapping, src *yaml.Node, explicit map[string]bool) error {
	sources := []*yaml.Node{src}
	if resolveAlias(src).Kind == yaml.SequenceNode {
		sources = resolveAlias(src).Content
	}
	for _, s := range sources {
		merged, err := convert(s)
		if err != nil {
			return err
		}
		if merged.Kind() != node.MappingKind {
			return errors.New("merge key value must be a mapping or a sequence of mappings")
		}
		for k, v := range merged.Mapping().All() {
			if explicit[k] || dst.Has(k) {
				continue
			}
			dst.Set(k, v)
		}
	}
	return nil
}

func resolveAlias(y *yaml.Node) *yaml.Node {
	for y.Kind == yaml.AliasNode && y.Alias != nil {
		y = y.Alias
	}
	return y
}
