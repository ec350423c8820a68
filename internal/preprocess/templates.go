// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"github.com/mongodb/genny-sub000/internal/node"
	"github.com/mongodb/genny-sub000/internal/scope"
)

// registerTemplates binds every entry of the document's ActorTemplates
// sequence as an ActorTemplate in the innermost frame. Configs are stored
// unresolved and evaluated once per instantiation. A later template with the
// same name replaces an earlier one.
func (w *walker) registerTemplates(doc *node.Mapping, p *Path) error {
	raw, ok := doc.Get(keyActorTemplates)
	if !ok || raw.IsNull() {
		return nil
	}
	tp := p.Child(keyActorTemplates)
	if raw.Kind() != node.SequenceKind {
		return invalidArgument(tp, "expected a sequence of templates, got %s", raw.Kind())
	}

	for i, entry := range raw.Items() {
		ep := tp.Index(i)
		f, err := fields(entry, ep, "actor template", "TemplateName", "Config")
		if err != nil {
			return err
		}
		nameNode, ok := f.Get("TemplateName")
		if !ok {
			return invalidArgument(ep, "missing required field %q", "TemplateName")
		}
		name, ok := nameNode.AsString()
		if !ok {
			return invalidArgument(ep.Child("TemplateName"), "expected a string, got %s", nameNode.Kind())
		}
		config, ok := f.Get("Config")
		if !ok {
			return invalidArgument(ep, "template %q has no Config", name)
		}

		if err := w.scope.Insert(name, scope.ActorTemplate, config); err != nil {
			return err
		}
		w.log.Debug("Registered actor template", "template", name, "path", ep.String())
	}
	return nil
}
