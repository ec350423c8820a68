// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package yamlnode

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"

	"github.com/mongodb/genny-sub000/internal/node"
)

const nopAnchor = "nop"

// EncodeOptions controls how a tree is rendered.
type EncodeOptions struct {
	// Header is written as a leading "# " comment line when non-empty.
	Header string
	// CompactNops renders every {Nop: true} mapping after the first as an
	// alias of the first one.
	CompactNops bool
	// Indent is the block indentation width; 2 when zero.
	Indent int
}

// Encode writes doc as a YAML document.
func Encode(w io.Writer, doc *node.Node, opts EncodeOptions) error {
	if opts.Header != "" {
		for _, line := range strings.Split(opts.Header, "\n") {
			if _, err := fmt.Fprintf(w, "# %s\n", line); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
		}
	}

	b := &builder{compactNops: opts.CompactNops}
	root := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{b.build(doc)}}

	indent := opts.Indent
	if indent == 0 {
		indent = 2
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(indent)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// Marshal renders doc as YAML bytes.
func Marshal(doc *node.Node, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeJSON writes doc as a JSON document. Mapping keys are emitted in
// sorted order and no header is written, since JSON has no comments.
func EncodeJSON(w io.Writer, doc *node.Node) error {
	data, err := Marshal(doc, EncodeOptions{})
	if err != nil {
		return err
	}
	out, err := k8syaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("failed to convert YAML to JSON: %w", err)
	}
	if _, err := w.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

type builder struct {
	compactNops bool
	nop         *yaml.Node
}

func (b *builder) build(n *node.Node) *yaml.Node {
	switch n.Kind() {
	case node.NullKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case node.BoolKind:
		v, _ := n.AsBool()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
	case node.IntKind:
		v, _ := n.AsInt()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}
	case node.FloatKind:
		v, _ := n.AsFloat()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(v)}
	case node.StringKind:
		v, _ := n.AsString()
		return stringNode(v)
	case node.SequenceKind:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Items() {
			seq.Content = append(seq.Content, b.build(item))
		}
		return seq
	default:
		if b.compactNops && isNop(n) {
			if b.nop != nil {
				return &yaml.Node{Kind: yaml.AliasNode, Alias: b.nop, Value: nopAnchor}
			}
		}
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, v := range n.Mapping().All() {
			m.Content = append(m.Content, stringNode(k), b.build(v))
		}
		if b.compactNops && isNop(n) {
			m.Anchor = nopAnchor
			b.nop = m
		}
		return m
	}
}

// stringNode returns a string scalar. Values that would read back as another
// type when left plain (dates, numbers, booleans) are single-quoted.
func stringNode(s string) *yaml.Node {
	y := &yaml.Node{Kind: yaml.ScalarNode, Value: s}
	if y.ShortTag() != "!!str" {
		y.Style = yaml.SingleQuotedStyle
	}
	y.Tag = "!!str"
	return y
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func isNop(n *node.Node) bool {
	if n.Len() != 1 {
		return false
	}
	v, ok := n.Get("Nop")
	if !ok {
		return false
	}
	b, ok := v.AsBool()
	return ok && b
}
