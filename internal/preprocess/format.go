// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"fmt"
	"strings"

	"github.com/mongodb/genny-sub000/internal/node"
)

// formatString resolves {^PreprocessorFormatString: {format, withArgs}}.
// Arguments are substituted positionally with printf semantics, so flags and
// widths such as %04d behave as usual. Each argument is converted to what its
// verb expects: %s takes the text of a string or number, %d and %i take a
// number (floats are truncated), %f, %e and %g take a number.
func (w *walker) formatString(payload *node.Node, p *Path) (*node.Node, error) {
	f, err := fields(payload, p, keyFormatString, "format", "withArgs")
	if err != nil {
		return nil, err
	}
	format, err := w.requiredString(f, "format", p)
	if err != nil {
		return nil, err
	}
	layout, verbs, err := scanVerbs(format)
	if err != nil {
		return nil, invalidArgument(p.Child("format"), "%v", err)
	}

	var resolved []*node.Node
	ap := p.Child("withArgs")
	if raw, ok := f.Get("withArgs"); ok && !raw.IsNull() {
		if raw.Kind() != node.SequenceKind {
			return nil, invalidArgument(ap, "expected a sequence of arguments, got %s", raw.Kind())
		}
		for i, item := range raw.Items() {
			r, err := w.resolve(item, ap.Index(i))
			if err != nil {
				return nil, err
			}
			if !r.IsNumber() && r.Kind() != node.StringKind {
				return nil, invalidArgument(ap.Index(i), "format argument must be a string or number, got %s %v", r.Kind(), r)
			}
			resolved = append(resolved, r)
		}
	}
	if len(verbs) != len(resolved) {
		return nil, invalidArgument(p, "format %q has %d verb(s) but %d argument(s)", format, len(verbs), len(resolved))
	}

	args := make([]any, len(resolved))
	for i, r := range resolved {
		arg, err := formatArg(verbs[i], r, ap.Index(i))
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return node.String(fmt.Sprintf(layout, args...)), nil
}

// formatArg converts r to the operand type of verb.
func formatArg(verb byte, r *node.Node, p *Path) (any, error) {
	if verb == 's' {
		return r.Scalar(), nil
	}
	if !r.IsNumber() {
		return nil, invalidArgument(p, "%%%c needs a number, got string %q", verb, r.Scalar())
	}
	if i, ok := r.AsInt(); ok {
		switch verb {
		case 'd', 'x', 'X', 'o':
			return i, nil
		default:
			return float64(i), nil
		}
	}
	f, _ := r.AsFloat()
	switch verb {
	case 'd', 'x', 'X', 'o':
		return int64(f), nil
	default:
		return f, nil
	}
}

// scanVerbs returns format rewritten for fmt.Sprintf, with %i spelled %d,
// and the verb of every argument slot in order.
func scanVerbs(format string) (string, []byte, error) {
	var b strings.Builder
	var verbs []byte
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			b.WriteByte(format[i])
			continue
		}
		j := i + 1
		if j < len(format) && format[j] == '%' {
			b.WriteString("%%")
			i = j
			continue
		}
		for j < len(format) && strings.IndexByte("+-# 0", format[j]) >= 0 {
			j++
		}
		for j < len(format) && isDigit(format[j]) {
			j++
		}
		if j < len(format) && format[j] == '.' {
			j++
			for j < len(format) && isDigit(format[j]) {
				j++
			}
		}
		if j >= len(format) {
			return "", nil, fmt.Errorf("format %q ends inside a verb", format)
		}

		verb := format[j]
		switch verb {
		case 'i':
			verb = 'd'
		case 's', 'd', 'x', 'X', 'o', 'f', 'F', 'e', 'E', 'g', 'G':
		default:
			return "", nil, fmt.Errorf("format %q uses unsupported verb %%%c", format, format[j])
		}
		b.WriteString(format[i:j])
		b.WriteByte(verb)
		verbs = append(verbs, verb)
		i = j
	}
	return b.String(), verbs, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
