// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package preprocess resolves workload documents written with the macro
// language into concrete documents.
//
// Preprocess walks the tree once, evaluating ^Parameter, ^NumExpr,
// ^PreprocessorFormatString, ^FlattenOnce and ^ClientURI macros and
// expanding ActorFromTemplate, LoadConfig and OnlyActiveInPhases entries
// against a stack of lexical scopes. The resolved root is then finalized:
// the override document is merged, default clients are injected, the phase
// timing recorder actor is appended, smoke mode is applied and SchemaVersion
// is normalized to a string.
//
// Each call owns its state, so independent documents may be preprocessed
// concurrently.
package preprocess

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/mongodb/genny-sub000/internal/logging"
	"github.com/mongodb/genny-sub000/internal/node"
	"github.com/mongodb/genny-sub000/internal/numexpr"
	"github.com/mongodb/genny-sub000/internal/scope"
	"github.com/mongodb/genny-sub000/internal/yamlnode"
)

// Options configures one preprocessing run.
type Options struct {
	// Source names the workload in the generated header.
	Source string
	// DefaultURI is the connection string of the injected Default client.
	DefaultURI string
	// StreamURI is the connection string of the injected Stream client.
	// It falls back to DefaultURI when empty.
	StreamURI string
	// Override is merged onto the resolved document when set.
	Override *node.Node
	// Smoke rewrites every phase Repeat to 1.
	Smoke bool
	// WorkloadRoot is the directory relative LoadConfig paths are resolved in.
	WorkloadRoot string
	// FS is the filesystem LoadConfig reads from. Defaults to the OS filesystem.
	FS afero.Fs
	// Parse decodes included files. Defaults to yamlnode.Decode.
	Parse ParseFunc
	// Evaluator evaluates ^NumExpr. Runs share a default evaluator when nil.
	Evaluator *numexpr.Evaluator
}

// Result is a resolved document and the comment line to emit above it.
type Result struct {
	Document *node.Node
	Header   string
}

var defaultEvaluator = sync.OnceValues(func() (*numexpr.Evaluator, error) {
	return numexpr.New()
})

func (o Options) withDefaults() (Options, error) {
	if o.FS == nil {
		o.FS = afero.NewOsFs()
	}
	if o.Parse == nil {
		o.Parse = yamlnode.Decode
	}
	if o.Evaluator == nil {
		e, err := defaultEvaluator()
		if err != nil {
			return o, err
		}
		o.Evaluator = e
	}
	return o, nil
}

// Preprocess resolves doc and finalizes the result. doc is not modified.
// All failures are returned as *Error.
func Preprocess(ctx context.Context, doc *node.Node, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx).With("workload", opts.Source)

	m := doc.Mapping()
	if m == nil {
		return nil, newError(ErrInvalidDocument, rootPath, "document must be a mapping, got %s", doc.Kind())
	}

	w := &walker{
		ctx:   ctx,
		log:   log,
		scope: scope.New(),
		expr:  opts.Evaluator,
		loader: &loader{
			fs:    opts.FS,
			parse: opts.Parse,
			root:  opts.WorkloadRoot,
		},
	}

	resolved, err := w.resolveRoot(m)
	if err != nil {
		return nil, err
	}

	final, err := finalize(log, resolved, opts)
	if err != nil {
		return nil, err
	}
	log.Debug("Preprocessed workload")
	return &Result{Document: final, Header: Header(opts.Source)}, nil
}

// resolveRoot resolves the root mapping in the outermost frame.
func (w *walker) resolveRoot(m *node.Mapping) (*node.Node, error) {
	h := w.scope.Enter()
	defer h.Close()

	c, err := classify(m, rootPath)
	if err != nil {
		return nil, err
	}
	switch c.kind {
	case plainNode:
		if err := w.registerTemplates(m, rootPath); err != nil {
			return nil, err
		}
		return w.resolveDocument(m, rootPath, true)
	case loadConfigMacro:
		return w.loadConfig(c.payload, rootPath.Child(c.key), true)
	default:
		r, err := w.expand(c, rootPath)
		if err != nil {
			return nil, err
		}
		if r.Kind() != node.MappingKind {
			return nil, newError(ErrInvalidDocument, rootPath, "%s must produce a mapping at the document root, got %s", c.key, r.Kind())
		}
		return r, nil
	}
}

// ProcessFile reads, parses and preprocesses the workload at path on
// opts.FS. Source defaults to the file name and WorkloadRoot to the file's
// directory.
func ProcessFile(ctx context.Context, path string, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if opts.Source == "" {
		opts.Source = filepath.Base(path)
	}
	if opts.WorkloadRoot == "" {
		opts.WorkloadRoot = filepath.Dir(path)
	}

	data, err := afero.ReadFile(opts.FS, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workload: %w", err)
	}
	doc, err := opts.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse workload %s: %w", path, err)
	}
	return Preprocess(ctx, doc, opts)
}
