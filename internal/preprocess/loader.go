// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/mongodb/genny-sub000/internal/node"
)

// ParseFunc turns file contents into a document tree.
type ParseFunc func([]byte) (*node.Node, error)

// loader reads the files named by LoadConfig.
type loader struct {
	fs    afero.Fs
	parse ParseFunc
	root  string

	// inProgress is the chain of files currently being resolved, outermost
	// first.
	inProgress []string
}

// abs resolves path against the workload root.
func (l *loader) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(l.root, path)
}

// read loads and parses one file. The result must be a mapping carrying a
// SchemaVersion.
func (l *loader) read(path string, p *Path) (*node.Mapping, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, wrapError(ErrMalformedExternalConfig, p, err, "reading %s", path)
	}
	doc, err := l.parse(data)
	if err != nil {
		return nil, wrapError(ErrMalformedExternalConfig, p, err, "parsing %s", path)
	}
	m := doc.Mapping()
	if m == nil {
		return nil, newError(ErrMalformedExternalConfig, p, "%s must contain a mapping, got %s", path, doc.Kind())
	}
	if !m.Has(keySchemaVersion) {
		return nil, newError(ErrMalformedExternalConfig, p, "%s has no top-level %s", path, keySchemaVersion)
	}
	return m, nil
}

// loadConfig resolves {LoadConfig: {Path, Parameters, Key}}. Parameters are
// resolved in the including scope and bound in a new frame together with the
// included file's own actor templates. When top is set the included document
// stands in for the root document.
func (w *walker) loadConfig(payload *node.Node, p *Path, top bool) (*node.Node, error) {
	f, err := fields(payload, p, keyLoadConfig, "Path", "Parameters", "Key")
	if err != nil {
		return nil, err
	}
	rel, err := w.requiredString(f, "Path", p)
	if err != nil {
		return nil, err
	}
	var key string
	if raw, ok := f.Get("Key"); ok && !raw.IsNull() {
		if key, err = w.resolveString(raw, p.Child("Key")); err != nil {
			return nil, err
		}
	}
	rawParams, _ := f.Get("Parameters")
	params, err := w.resolveBindings(rawParams, p.Child("Parameters"))
	if err != nil {
		return nil, err
	}

	path := w.loader.abs(rel)
	if slices.Contains(w.loader.inProgress, path) {
		chain := append(slices.Clone(w.loader.inProgress), path)
		return nil, newError(ErrCyclicInclude, p, "%s", strings.Join(chain, " -> "))
	}
	if err := w.ctx.Err(); err != nil {
		return nil, &Error{Kind: err, Path: p.String(), Msg: "loading " + path}
	}

	w.log.Debug("Loading external config", "path", path, "key", key, "parameters", len(params))
	doc, err := w.loader.read(path, p.Child("Path"))
	if err != nil {
		return nil, err
	}

	var target *node.Node
	if key != "" {
		v, ok := doc.Get(key)
		if !ok {
			return nil, newError(ErrMalformedExternalConfig, p.Child("Key"), "%s has no top-level key %q", path, key)
		}
		target = v
	}

	w.loader.inProgress = append(w.loader.inProgress, path)
	defer func() { w.loader.inProgress = w.loader.inProgress[:len(w.loader.inProgress)-1] }()

	h := w.scope.Enter()
	defer h.Close()
	if err := w.bind(params); err != nil {
		return nil, err
	}

	fp := inFile(p, rel)
	if err := w.registerTemplates(doc, fp); err != nil {
		return nil, err
	}
	if target != nil {
		return w.resolve(target, fp.Child(key))
	}
	return w.resolveDocument(doc, fp, top)
}
