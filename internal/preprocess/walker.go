// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mongodb/genny-sub000/internal/node"
	"github.com/mongodb/genny-sub000/internal/numexpr"
	"github.com/mongodb/genny-sub000/internal/scope"
)

// walker resolves one document. It owns the scope stack of a single run and
// is not safe for concurrent use.
type walker struct {
	ctx    context.Context
	log    *slog.Logger
	scope  *scope.Stack
	expr   *numexpr.Evaluator
	loader *loader

	// clients is the resolved top level Clients mapping, published by the
	// document loop once that key has been resolved.
	clients *node.Mapping
}

// resolve returns n with every macro evaluated. The input is never modified;
// containers in the result are fresh.
func (w *walker) resolve(n *node.Node, p *Path) (*node.Node, error) {
	switch n.Kind() {
	case node.SequenceKind:
		items := make([]*node.Node, 0, n.Len())
		for i, item := range n.Items() {
			r, err := w.resolve(item, p.Index(i))
			if err != nil {
				return nil, err
			}
			items = append(items, r)
		}
		return node.Seq(items...), nil

	case node.MappingKind:
		m, err := classify(n.Mapping(), p)
		if err != nil {
			return nil, err
		}
		return w.expand(m, p)

	default:
		return n, nil
	}
}

// expand evaluates a classified mapping.
func (w *walker) expand(m macro, p *Path) (*node.Node, error) {
	mp := p.Child(m.key)
	switch m.kind {
	case parameterMacro:
		return w.parameter(m.payload, mp)
	case numExprMacro:
		return w.numExpr(m.payload, mp)
	case formatStringMacro:
		return w.formatString(m.payload, mp)
	case flattenOnceMacro:
		return w.flattenOnce(m.payload, mp)
	case clientURIMacro:
		return w.clientURI(m.payload, mp)
	case actorFromTemplateMacro:
		return w.actorFromTemplate(m.payload, mp)
	case loadConfigMacro:
		return w.loadConfig(m.payload, mp, false)
	case onlyActiveInPhasesMacro:
		return w.onlyActiveInPhases(m.payload, mp)
	default:
		out := node.NewMapping()
		for key, value := range m.mapping.All() {
			r, err := w.resolve(value, p.Child(key))
			if err != nil {
				return nil, err
			}
			out.Set(key, r)
		}
		return node.FromMapping(out), nil
	}
}

// resolveDocument resolves the entries of a document root in order. Templates
// must already be registered. ActorTemplates is dropped from the output, and
// so is SchemaVersion unless top is set. When top is set the resolved
// Clients entry is published for ^ClientURI lookups by later entries.
func (w *walker) resolveDocument(doc *node.Mapping, p *Path, top bool) (*node.Node, error) {
	out := node.NewMapping()
	for key, value := range doc.All() {
		switch {
		case key == keyActorTemplates:
			continue
		case key == keySchemaVersion && !top:
			continue
		}

		r, err := w.resolve(value, p.Child(key))
		if err != nil {
			return nil, err
		}
		out.Set(key, r)

		if top && key == keyClients {
			w.clients = r.Mapping()
		}
	}
	return node.FromMapping(out), nil
}

// parameter resolves {^Parameter: {Name, Default}}.
func (w *walker) parameter(payload *node.Node, p *Path) (*node.Node, error) {
	f, err := fields(payload, p, keyParameter, "Name", "Default")
	if err != nil {
		return nil, err
	}
	name, err := w.requiredString(f, "Name", p)
	if err != nil {
		return nil, err
	}

	var def *node.Node
	if raw, ok := f.Get("Default"); ok {
		if def, err = w.resolve(raw, p.Child("Default")); err != nil {
			return nil, err
		}
	}

	if v, ok := w.scope.Lookup(name, scope.Parameter); ok {
		return node.Clone(v), nil
	}
	if def == nil {
		return nil, unbound(p, "parameter %q has no binding and no default", name)
	}
	return def, nil
}

// numExpr resolves {^NumExpr: {withExpression, andValues}}.
func (w *walker) numExpr(payload *node.Node, p *Path) (*node.Node, error) {
	f, err := fields(payload, p, keyNumExpr, "withExpression", "andValues")
	if err != nil {
		return nil, err
	}
	expr, err := w.requiredString(f, "withExpression", p)
	if err != nil {
		return nil, err
	}

	vars := map[string]numexpr.Number{}
	if raw, ok := f.Get("andValues"); ok && !raw.IsNull() {
		vp := p.Child("andValues")
		values := raw.Mapping()
		if values == nil {
			return nil, invalidArgument(vp, "expected a mapping of variable names to numbers, got %s", raw.Kind())
		}
		for name, value := range values.All() {
			r, err := w.resolve(value, vp.Child(name))
			if err != nil {
				return nil, err
			}
			switch r.Kind() {
			case node.IntKind:
				i, _ := r.AsInt()
				vars[name] = numexpr.Int(i)
			case node.FloatKind:
				f, _ := r.AsFloat()
				vars[name] = numexpr.Float(f)
			default:
				return nil, invalidArgument(vp.Child(name), "expression variable must be a number, got %s %v", r.Kind(), r)
			}
		}
	}

	result, err := w.expr.Evaluate(expr, vars)
	if err != nil {
		if errors.Is(err, numexpr.ErrUnknownVariable) {
			return nil, wrapError(ErrUnboundReference, p, err, "evaluating %q", expr)
		}
		return nil, wrapError(ErrInvalidMacroArgument, p, err, "evaluating %q", expr)
	}
	if result.IsInt() {
		return node.Int(result.Int64()), nil
	}
	return node.Float(result.Float64()), nil
}

// clientURI resolves {^ClientURI: {Name}} against the published Clients.
func (w *walker) clientURI(payload *node.Node, p *Path) (*node.Node, error) {
	f, err := fields(payload, p, keyClientURI, "Name")
	if err != nil {
		return nil, err
	}
	name, err := w.requiredString(f, "Name", p)
	if err != nil {
		return nil, err
	}

	if w.clients == nil {
		return nil, unbound(p, "client %q: no Clients section has been resolved before this reference", name)
	}
	client, ok := w.clients.Get(name)
	if !ok {
		return nil, unbound(p, "client %q is not defined in Clients", name)
	}
	uri, ok := client.Get("URI")
	if !ok {
		return nil, unbound(p, "client %q has no URI", name)
	}
	return node.Clone(uri), nil
}

// actorFromTemplate instantiates a registered template with its parameters
// bound in a fresh frame.
func (w *walker) actorFromTemplate(payload *node.Node, p *Path) (*node.Node, error) {
	f, err := fields(payload, p, keyActorFromTemplate, "TemplateName", "TemplateParameters")
	if err != nil {
		return nil, err
	}
	name, err := w.requiredString(f, "TemplateName", p)
	if err != nil {
		return nil, err
	}
	config, ok := w.scope.Lookup(name, scope.ActorTemplate)
	if !ok {
		return nil, newError(ErrUnknownTemplate, p.Child("TemplateName"), "no actor template named %q", name)
	}

	raw, _ := f.Get("TemplateParameters")
	params, err := w.resolveBindings(raw, p.Child("TemplateParameters"))
	if err != nil {
		return nil, err
	}

	h := w.scope.Enter()
	defer h.Close()
	if err := w.bind(params); err != nil {
		return nil, err
	}

	w.log.Debug("Instantiating actor template", "template", name, "path", p.String(), "parameters", len(params))
	return w.resolve(config, p.Child("Config"))
}

// resolveBindings resolves a mapping of parameter values in the current
// scope. A missing or null mapping yields no bindings.
func (w *walker) resolveBindings(raw *node.Node, p *Path) ([]node.Pair, error) {
	if raw.IsNull() {
		return nil, nil
	}
	m := raw.Mapping()
	if m == nil {
		return nil, invalidArgument(p, "expected a mapping of parameter names to values, got %s", raw.Kind())
	}
	out := make([]node.Pair, 0, m.Len())
	for name, value := range m.All() {
		r, err := w.resolve(value, p.Child(name))
		if err != nil {
			return nil, err
		}
		out = append(out, node.Pair{Key: name, Value: r})
	}
	return out, nil
}

// bind inserts resolved parameters into the innermost frame.
func (w *walker) bind(params []node.Pair) error {
	for _, kv := range params {
		if err := w.scope.Insert(kv.Key, scope.Parameter, kv.Value); err != nil {
			return err
		}
	}
	return nil
}

// requiredString resolves field key of f and requires a string result.
func (w *walker) requiredString(f *node.Mapping, key string, p *Path) (string, error) {
	raw, ok := f.Get(key)
	if !ok {
		return "", invalidArgument(p, "missing required field %q", key)
	}
	return w.resolveString(raw, p.Child(key))
}

func (w *walker) resolveString(raw *node.Node, p *Path) (string, error) {
	r, err := w.resolve(raw, p)
	if err != nil {
		return "", err
	}
	s, ok := r.AsString()
	if !ok {
		return "", invalidArgument(p, "expected a string, got %s %v", r.Kind(), r)
	}
	return s, nil
}

// resolveInt resolves raw and requires an int result.
func (w *walker) resolveInt(raw *node.Node, p *Path) (int64, error) {
	r, err := w.resolve(raw, p)
	if err != nil {
		return 0, err
	}
	i, ok := r.AsInt()
	if !ok {
		return 0, invalidArgument(p, "expected an integer, got %s %v", r.Kind(), r)
	}
	return i, nil
}
