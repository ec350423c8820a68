// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package runner implements the evaluate and batch commands on top of the
// preprocess package.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/mongodb/genny-sub000/internal/batch"
	"github.com/mongodb/genny-sub000/internal/config"
	"github.com/mongodb/genny-sub000/internal/logging"
	"github.com/mongodb/genny-sub000/internal/node"
	"github.com/mongodb/genny-sub000/internal/numexpr"
	"github.com/mongodb/genny-sub000/internal/preprocess"
	"github.com/mongodb/genny-sub000/internal/yamlnode"
)

// Runner preprocesses workloads according to Settings.
type Runner struct {
	settings *config.Settings
	fs       afero.Fs
	stdout   io.Writer
	expr     *numexpr.Evaluator
}

// New creates a Runner reading and writing files on fs.
func New(settings *config.Settings, fs afero.Fs, stdout io.Writer) (*Runner, error) {
	expr, err := numexpr.New()
	if err != nil {
		return nil, err
	}
	return &Runner{settings: settings, fs: fs, stdout: stdout, expr: expr}, nil
}

// options builds the preprocess options shared by every workload of a run.
func (r *Runner) options() (preprocess.Options, error) {
	opts := preprocess.Options{
		DefaultURI:   r.settings.DefaultURI,
		StreamURI:    r.settings.StreamURI,
		Smoke:        r.settings.Smoke,
		WorkloadRoot: r.settings.WorkloadRoot,
		FS:           r.fs,
		Parse:        yamlnode.Decode,
		Evaluator:    r.expr,
	}
	if r.settings.Override != "" {
		override, err := r.readOverride(r.settings.Override)
		if err != nil {
			return opts, err
		}
		opts.Override = override
	}
	return opts, nil
}

func (r *Runner) readOverride(path string) (*node.Node, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read override: %w", err)
	}
	doc, err := yamlnode.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse override %s: %w", path, err)
	}
	if doc.Kind() != node.MappingKind {
		return nil, fmt.Errorf("override %s must be a mapping, got %s", path, doc.Kind())
	}
	return doc, nil
}

// Evaluate preprocesses one workload and writes it to output, or to stdout
// when output is empty.
func (r *Runner) Evaluate(ctx context.Context, workload, output string) error {
	opts, err := r.options()
	if err != nil {
		return err
	}
	res, err := preprocess.ProcessFile(ctx, workload, opts)
	if err != nil {
		return err
	}
	if output == "" {
		return r.encode(r.stdout, res)
	}
	if err := r.writeFile(output, res); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("Wrote resolved workload", "workload", workload, "output", output)
	return nil
}

// Batch preprocesses every workload matched by patterns into outDir.
func (r *Runner) Batch(ctx context.Context, patterns []string, outDir string) error {
	log := logging.FromContext(ctx)

	inputs, err := batch.Expand(r.fs, patterns)
	if err != nil {
		return err
	}
	outputs, err := r.outputPaths(inputs, outDir)
	if err != nil {
		return err
	}
	opts, err := r.options()
	if err != nil {
		return err
	}

	log.Info("Preprocessing workloads", "count", len(inputs), "jobs", r.settings.Batch.Jobs)
	err = batch.Run(ctx, inputs, batch.Options{
		Jobs:      r.settings.Batch.Jobs,
		KeepGoing: r.settings.Batch.KeepGoing,
	}, func(ctx context.Context, in batch.Input) error {
		res, err := preprocess.ProcessFile(ctx, in.Path, opts)
		if err != nil {
			return err
		}
		return r.writeFile(outputs[in.Path], res)
	})
	if err != nil {
		return err
	}
	log.Info("Preprocessed workloads", "count", len(inputs), "out_dir", outDir)
	return nil
}

// outputPaths maps every input to its output file. Inputs from different
// patterns that would be written to the same file are rejected.
func (r *Runner) outputPaths(inputs []batch.Input, dir string) (map[string]string, error) {
	outputs := make(map[string]string, len(inputs))
	owners := make(map[string]string, len(inputs))
	for _, in := range inputs {
		out := r.outputPath(dir, in.Rel)
		if prev, ok := owners[out]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, in.Path, out)
		}
		owners[out] = in.Path
		outputs[in.Path] = out
	}
	return outputs, nil
}

// outputPath places rel below dir with the extension of the output format.
func (r *Runner) outputPath(dir, rel string) string {
	ext := ".yml"
	if r.settings.Output.Format == "json" {
		ext = ".json"
	}
	return filepath.Join(dir, strings.TrimSuffix(rel, filepath.Ext(rel))+ext)
}

func (r *Runner) writeFile(path string, res *preprocess.Result) error {
	var buf bytes.Buffer
	if err := r.encode(&buf, res); err != nil {
		return err
	}
	if err := r.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := afero.WriteFile(r.fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (r *Runner) encode(w io.Writer, res *preprocess.Result) error {
	if r.settings.Output.Format == "json" {
		return yamlnode.EncodeJSON(w, res.Document)
	}
	return yamlnode.Encode(w, res.Document, yamlnode.EncodeOptions{
		Header:      res.Header,
		CompactNops: r.settings.Output.CompactNops,
	})
}
