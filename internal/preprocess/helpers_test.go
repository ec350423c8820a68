// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/mongodb/genny-sub000/internal/node"
	"github.com/mongodb/genny-sub000/internal/numexpr"
	"github.com/mongodb/genny-sub000/internal/scope"
	"github.com/mongodb/genny-sub000/internal/yamlnode"
)

const testWorkloadRoot = "/workloads"

func decode(t *testing.T, src string) *node.Node {
	t.Helper()
	doc, err := yamlnode.Decode([]byte(src))
	require.NoError(t, err)
	return doc
}

func newTestWalker(t *testing.T, fs afero.Fs) *walker {
	t.Helper()
	e, err := numexpr.New()
	require.NoError(t, err)
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	return &walker{
		ctx:   context.Background(),
		log:   slog.New(slog.DiscardHandler),
		scope: scope.New(),
		expr:  e,
		loader: &loader{
			fs:    fs,
			parse: yamlnode.Decode,
			root:  testWorkloadRoot,
		},
	}
}

// resolveYAML runs the walker over a document without finalizing it.
func resolveYAML(t *testing.T, fs afero.Fs, src string) (*node.Node, error) {
	t.Helper()
	w := newTestWalker(t, fs)
	out, err := w.resolveRoot(decode(t, src).Mapping())
	if err == nil && w.scope.Depth() != 0 {
		t.Errorf("scope depth after resolution = %d, want 0", w.scope.Depth())
	}
	return out, err
}

// assertYAML compares got with the document described by want, including
// key order.
func assertYAML(t *testing.T, want string, got *node.Node) {
	t.Helper()
	wantNode := decode(t, want)
	if diff := cmp.Diff(wantNode.Interface(), got.Interface()); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
		return
	}
	if !node.Equal(wantNode, got) {
		t.Errorf("document key order mismatch:\nwant %v\ngot  %v", wantNode, got)
	}
}

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}
