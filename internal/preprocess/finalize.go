// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/mongodb/genny-sub000/internal/node"
)

const (
	phaseTimingRecorder = "PhaseTimingRecorder"
	defaultMaxPoolSize  = 100

	defaultClient = "Default"
	streamClient  = "Stream"
)

// finalize applies the document wide rewrites to a resolved root, in order:
// override merge, client injection, trailing recorder actor, smoke rewrite
// and schema version normalization.
func finalize(log *slog.Logger, doc *node.Node, opts Options) (*node.Node, error) {
	if opts.Override != nil {
		doc = node.Merge(doc, opts.Override)
		log.Debug("Merged override document")
	}
	root := doc.Mapping()
	if root == nil {
		return nil, newError(ErrInvalidDocument, rootPath, "resolved document must be a mapping, got %s", doc.Kind())
	}

	if err := injectClients(root, opts); err != nil {
		return nil, err
	}
	if err := appendPhaseTimingRecorder(root); err != nil {
		return nil, err
	}
	if opts.Smoke {
		n, err := smokeRepeats(root)
		if err != nil {
			return nil, err
		}
		log.Debug("Applied smoke mode", "rewritten", n)
	}
	if err := normalizeSchemaVersion(root); err != nil {
		return nil, err
	}
	return doc, nil
}

func clientEntry(uri string) *node.Node {
	return node.Map(
		node.Pair{Key: "QueryOptions", Value: node.Map(node.Pair{Key: "maxPoolSize", Value: node.Int(defaultMaxPoolSize)})},
		node.Pair{Key: "URI", Value: node.String(uri)},
	)
}

// injectClients adds Default and Stream clients unless a Default client is
// already configured. A new Clients entry is placed after SchemaVersion.
func injectClients(root *node.Mapping, opts Options) error {
	clients, ok := root.Get(keyClients)
	if ok && !clients.IsNull() && clients.Kind() != node.MappingKind {
		return newError(ErrInvalidDocument, rootPath.Child(keyClients), "expected a mapping, got %s", clients.Kind())
	}
	if clients.Mapping().Has(defaultClient) {
		return nil
	}

	if clients.Mapping() == nil {
		clients = node.Map()
		root.InsertAt(root.Index(keySchemaVersion)+1, keyClients, clients)
	}
	m := clients.Mapping()
	m.Set(defaultClient, clientEntry(opts.DefaultURI))
	if !m.Has(streamClient) {
		stream := opts.StreamURI
		if stream == "" {
			stream = opts.DefaultURI
		}
		m.Set(streamClient, clientEntry(stream))
	}
	return nil
}

// appendPhaseTimingRecorder adds the recorder as the last actor.
func appendPhaseTimingRecorder(root *node.Mapping) error {
	actors, ok := root.Get(keyActors)
	if ok && !actors.IsNull() && actors.Kind() != node.SequenceKind {
		return newError(ErrInvalidDocument, rootPath.Child(keyActors), "expected a sequence, got %s", actors.Kind())
	}
	items := actors.Items()
	for _, a := range items {
		name, _ := a.Get("Name")
		typ, _ := a.Get("Type")
		if node.Equal(name, node.String(phaseTimingRecorder)) && node.Equal(typ, node.String(phaseTimingRecorder)) {
			return nil
		}
	}

	recorder := node.Map(
		node.Pair{Key: "Name", Value: node.String(phaseTimingRecorder)},
		node.Pair{Key: "Type", Value: node.String(phaseTimingRecorder)},
		node.Pair{Key: "Threads", Value: node.Int(1)},
	)
	root.Set(keyActors, node.Seq(append(slices.Clone(items), recorder)...))
	return nil
}

// smokeRepeats sets every Repeat of every actor phase to 1 and reports how
// many fields it rewrote.
func smokeRepeats(root *node.Mapping) (int, error) {
	actors, _ := root.Get(keyActors)
	n := 0
	for i, actor := range actors.Items() {
		phases, ok := actor.Get(keyPhases)
		if !ok || phases.IsNull() {
			continue
		}
		if phases.Kind() != node.SequenceKind {
			return 0, newError(ErrInvalidDocument, rootPath.Child(keyActors).Index(i).Child(keyPhases),
				"expected a sequence, got %s", phases.Kind())
		}
		for _, phase := range phases.Items() {
			m := phase.Mapping()
			if m.Has("Repeat") {
				m.Set("Repeat", node.Int(1))
				n++
			}
		}
	}
	return n, nil
}

// normalizeSchemaVersion makes SchemaVersion a string scalar whatever type
// the parser gave it.
func normalizeSchemaVersion(root *node.Mapping) error {
	v, ok := root.Get(keySchemaVersion)
	if !ok {
		return nil
	}
	if !v.IsScalar() {
		return newError(ErrInvalidDocument, rootPath.Child(keySchemaVersion), "expected a scalar, got %s", v.Kind())
	}
	root.Set(keySchemaVersion, node.String(v.Scalar()))
	return nil
}

// Header returns the generated-file comment for a workload.
func Header(source string) string {
	if source == "" {
		return "Generated by genny-preprocess. Do not edit."
	}
	return fmt.Sprintf("Generated by genny-preprocess from %s. Do not edit.", source)
}
