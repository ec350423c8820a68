// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package batch expands workload glob patterns and runs a function over the
// matches with bounded parallelism.
package batch

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/mongodb/genny-sub000/internal/logging"
)

// Input is one file matched by a pattern.
type Input struct {
	// Path is the file's location on the filesystem.
	Path string
	// Rel is Path relative to the literal prefix of the pattern that matched
	// it, used to lay out outputs.
	Rel string
}

// Expand returns the files matching patterns, in pattern order and sorted
// within each pattern. Patterns support ** as in doublestar. A file matched by
// several patterns is returned once. A pattern matching nothing is an error.
func Expand(fs afero.Fs, patterns []string) ([]Input, error) {
	var out []Input
	seen := map[string]bool{}
	for _, pattern := range patterns {
		base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
		root := fs
		if base != "." {
			root = afero.NewBasePathFs(fs, filepath.FromSlash(base))
		}

		matches, err := doublestar.Glob(afero.NewIOFS(root), rest, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", pattern)
		}
		slices.Sort(matches)

		for _, m := range matches {
			p := filepath.FromSlash(path.Join(base, m))
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, Input{Path: p, Rel: filepath.FromSlash(m)})
		}
	}
	return out, nil
}

// Options configures Run.
type Options struct {
	// Jobs bounds the number of concurrent calls. Values below 1 mean 1.
	Jobs int
	// KeepGoing runs every input and reports all failures together instead
	// of stopping at the first one.
	KeepGoing bool
}

// Run calls fn once per input with at most opts.Jobs calls in flight.
//
// Without KeepGoing the first failure cancels the context passed to the
// remaining calls and is returned. With KeepGoing every input runs and the
// failures are returned as a *multierror.Error in input order.
func Run(ctx context.Context, inputs []Input, opts Options, fn func(context.Context, Input) error) error {
	log := logging.FromContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Jobs, 1))

	failures := make([]error, len(inputs))
	for i, in := range inputs {
		if !opts.KeepGoing && gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			log.Debug("Processing workload", "path", in.Path)
			err := fn(gctx, in)
			if err == nil {
				return nil
			}
			err = fmt.Errorf("%s: %w", in.Path, err)
			if !opts.KeepGoing {
				return err
			}
			log.Warn("Workload failed", "path", in.Path, "error", err)
			failures[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var result *multierror.Error
	for _, err := range failures {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
