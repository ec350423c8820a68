// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"slices"
	"strings"

	"github.com/mongodb/genny-sub000/internal/node"
)

// macroKind is the closed set of node shapes the walker dispatches on.
type macroKind int

const (
	plainNode macroKind = iota
	parameterMacro
	numExprMacro
	formatStringMacro
	flattenOnceMacro
	clientURIMacro
	actorFromTemplateMacro
	loadConfigMacro
	onlyActiveInPhasesMacro
)

// Mapping keys that introduce a macro. Keys starting with macroPrefix are
// reserved; the others are structural keys that are only special when they
// are the sole key of their mapping.
const (
	macroPrefix = "^"

	keyParameter          = "^Parameter"
	keyNumExpr            = "^NumExpr"
	keyFormatString       = "^PreprocessorFormatString"
	keyFlattenOnce        = "^FlattenOnce"
	keyClientURI          = "^ClientURI"
	keyActorFromTemplate  = "ActorFromTemplate"
	keyLoadConfig         = "LoadConfig"
	keyOnlyActiveInPhases = "OnlyActiveInPhases"
)

var macroKeys = map[string]macroKind{
	keyParameter:          parameterMacro,
	keyNumExpr:            numExprMacro,
	keyFormatString:       formatStringMacro,
	keyFlattenOnce:        flattenOnceMacro,
	keyClientURI:          clientURIMacro,
	keyActorFromTemplate:  actorFromTemplateMacro,
	keyLoadConfig:         loadConfigMacro,
	keyOnlyActiveInPhases: onlyActiveInPhasesMacro,
}

// Top level document keys with special handling.
const (
	keySchemaVersion  = "SchemaVersion"
	keyActorTemplates = "ActorTemplates"
	keyClients        = "Clients"
	keyActors         = "Actors"
	keyPhases         = "Phases"
)

// macro is a classified mapping. For plainNode, mapping holds the entries to
// recurse into; otherwise key and payload hold the single macro entry.
type macro struct {
	kind    macroKind
	key     string
	payload *node.Node
	mapping *node.Mapping
}

// classify decides once what a mapping is. A single entry keyed by a known
// macro key is that macro. Unknown "^" keys, and macro keys that share their
// mapping with other keys, are rejected.
func classify(m *node.Mapping, p *Path) (macro, error) {
	if m.Len() == 1 {
		key := m.Keys()[0]
		payload, _ := m.Get(key)
		if kind, ok := macroKeys[key]; ok {
			return macro{kind: kind, key: key, payload: payload}, nil
		}
		if strings.HasPrefix(key, macroPrefix) {
			return macro{}, invalidArgument(p.Child(key), "unknown macro %q", key)
		}
		return macro{kind: plainNode, mapping: m}, nil
	}

	for key := range m.All() {
		if _, ok := macroKeys[key]; ok || strings.HasPrefix(key, macroPrefix) {
			return macro{}, invalidArgument(p.Child(key),
				"%q must be the only key in its mapping, found siblings %s", key, siblings(m, key))
		}
	}
	return macro{kind: plainNode, mapping: m}, nil
}

func siblings(m *node.Mapping, key string) string {
	keys := slices.DeleteFunc(m.Keys(), func(k string) bool { return k == key })
	return "[" + strings.Join(keys, ", ") + "]"
}

// fields checks that a macro payload is a mapping using only the allowed keys.
func fields(payload *node.Node, p *Path, name string, allowed ...string) (*node.Mapping, error) {
	m := payload.Mapping()
	if m == nil {
		return nil, invalidArgument(p, "%s expects a mapping, got %s", name, payload.Kind())
	}
	for key := range m.All() {
		if !slices.Contains(allowed, key) {
			return nil, invalidArgument(p.Child(key), "unknown field %q for %s, expected one of [%s]",
				key, name, strings.Join(allowed, ", "))
		}
	}
	return m, nil
}
