// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertFragment = `
SchemaVersion: 2018-07-01
Actor:
  Name: {^Parameter: {Name: Name, Default: Fails}}
  Type: Insert
  Threads: {^Parameter: {Name: Threads, Default: 1}}
`

func TestLoadConfigParametersOverrideDefaults(t *testing.T) {
	t.Parallel()

	fs := memFS(t, map[string]string{"/workloads/phases/Insert.yml": insertFragment})

	got, err := resolveYAML(t, fs, `
Actors:
- LoadConfig:
    Path: phases/Insert.yml
    Key: Actor
    Parameters:
      Name: Passes
- LoadConfig:
    Path: phases/Insert.yml
    Key: Actor
`)
	require.NoError(t, err)

	assertYAML(t, `
Actors:
- {Name: Passes, Type: Insert, Threads: 1}
- {Name: Fails, Type: Insert, Threads: 1}
`, got)
}

func TestLoadConfigParametersResolveInIncludingScope(t *testing.T) {
	t.Parallel()

	fs := memFS(t, map[string]string{
		"/workloads/phases/Insert.yml": insertFragment,
		"/workloads/phases/Group.yml": `
SchemaVersion: 2018-07-01
Actors:
- LoadConfig:
    Path: phases/Insert.yml
    Key: Actor
    Parameters:
      Name: {^Parameter: {Name: GroupName, Default: Group}}
      Threads: {^NumExpr: {withExpression: "t * 2", andValues: {t: {^Parameter: {Name: Threads, Default: 1}}}}}
`,
	})

	got, err := resolveYAML(t, fs, `
Group:
  LoadConfig:
    Path: phases/Group.yml
    Key: Actors
    Parameters:
      GroupName: Outer
      Threads: 4
`)
	require.NoError(t, err)

	assertYAML(t, `
Group:
- {Name: Outer, Type: Insert, Threads: 8}
`, got)
}

func TestLoadConfigWholeDocumentAsRoot(t *testing.T) {
	t.Parallel()

	fs := memFS(t, map[string]string{"/workloads/Base.yml": `
SchemaVersion: 2018-07-01
ActorTemplates:
- TemplateName: T
  Config:
    Name: {^Parameter: {Name: Name, Default: X}}
Clients:
  Default:
    URI: {^Parameter: {Name: URI, Default: "mongodb://a"}}
Actors:
- ActorFromTemplate: {TemplateName: T, TemplateParameters: {Name: FromBase}}
- Name: B
  URI: {^ClientURI: {Name: Default}}
`})

	got, err := resolveYAML(t, fs, `
LoadConfig:
  Path: Base.yml
  Parameters:
    URI: mongodb://b
`)
	require.NoError(t, err)

	assertYAML(t, `
SchemaVersion: 2018-07-01
Clients:
  Default:
    URI: mongodb://b
Actors:
- {Name: FromBase}
- {Name: B, URI: mongodb://b}
`, got)
}

func TestLoadConfigWholeDocumentNested(t *testing.T) {
	t.Parallel()

	fs := memFS(t, map[string]string{"/workloads/Phase.yml": `
SchemaVersion: 2018-07-01
ActorTemplates:
- {TemplateName: Local, Config: {Repeat: 3}}
Repeat: {^Parameter: {Name: Repeat, Default: 1}}
Duration: 1 minute
`})

	got, err := resolveYAML(t, fs, `
Phases:
- LoadConfig: {Path: /workloads/Phase.yml, Parameters: {Repeat: 7}}
`)
	require.NoError(t, err)
	assertYAML(t, `
Phases:
- {Repeat: 7, Duration: 1 minute}
`, got)
}

func TestLoadConfigTemplatesAreScopedToTheInclusion(t *testing.T) {
	t.Parallel()

	fs := memFS(t, map[string]string{"/workloads/Templates.yml": `
SchemaVersion: 2018-07-01
ActorTemplates:
- {TemplateName: Local, Config: {Name: local}}
Actor:
  ActorFromTemplate: {TemplateName: Local}
`})

	got, err := resolveYAML(t, fs, `
Actors:
- LoadConfig: {Path: Templates.yml, Key: Actor}
`)
	require.NoError(t, err)
	assertYAML(t, `Actors: [{Name: local}]`, got)

	_, err = resolveYAML(t, fs, `
Actors:
- LoadConfig: {Path: Templates.yml, Key: Actor}
- ActorFromTemplate: {TemplateName: Local}
`)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	fs := memFS(t, map[string]string{
		"/workloads/NoVersion.yml": "Actor: {Name: A}\n",
		"/workloads/List.yml":      "- 1\n- 2\n",
		"/workloads/Valid.yml":     "SchemaVersion: 2018-07-01\nActor: {Name: A}\n",
		"/workloads/Broken.yml":    "SchemaVersion: [\n",
	})

	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "missing schema version",
			doc:     `Actor: {LoadConfig: {Path: NoVersion.yml, Key: Actor}}`,
			wantErr: ErrMalformedExternalConfig,
		},
		{
			name:    "root is not a mapping",
			doc:     `Actor: {LoadConfig: {Path: List.yml}}`,
			wantErr: ErrMalformedExternalConfig,
		},
		{
			name:    "missing key",
			doc:     `Actor: {LoadConfig: {Path: Valid.yml, Key: Missing}}`,
			wantErr: ErrMalformedExternalConfig,
		},
		{
			name:    "missing file",
			doc:     `Actor: {LoadConfig: {Path: Missing.yml}}`,
			wantErr: ErrMalformedExternalConfig,
		},
		{
			name:    "unparsable file",
			doc:     `Actor: {LoadConfig: {Path: Broken.yml}}`,
			wantErr: ErrMalformedExternalConfig,
		},
		{
			name:    "path is not a string",
			doc:     `Actor: {LoadConfig: {Path: 1}}`,
			wantErr: ErrInvalidMacroArgument,
		},
		{
			name:    "unbound parameter in included file",
			doc:     `Actor: {LoadConfig: {Path: Valid.yml, Key: Actor, Parameters: {X: {^Parameter: {Name: Y}}}}}`,
			wantErr: ErrUnboundReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := resolveYAML(t, fs, tt.doc)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfigDetectsCycles(t *testing.T) {
	t.Parallel()

	fs := memFS(t, map[string]string{
		"/workloads/A.yml": "SchemaVersion: 2018-07-01\nNext: {LoadConfig: {Path: B.yml}}\n",
		"/workloads/B.yml": "SchemaVersion: 2018-07-01\nNext: {LoadConfig: {Path: A.yml}}\n",
	})

	_, err := resolveYAML(t, fs, `Root: {LoadConfig: {Path: A.yml}}`)
	require.ErrorIs(t, err, ErrCyclicInclude)
	assert.Contains(t, err.Error(), "/workloads/A.yml -> /workloads/B.yml -> /workloads/A.yml")
}

func TestLoadConfigSameFileTwiceIsNotACycle(t *testing.T) {
	t.Parallel()

	fs := memFS(t, map[string]string{"/workloads/Leaf.yml": "SchemaVersion: 2018-07-01\nValue: 1\n"})

	got, err := resolveYAML(t, fs, `
A: {LoadConfig: {Path: Leaf.yml, Key: Value}}
B: {LoadConfig: {Path: ./Leaf.yml, Key: Value}}
`)
	require.NoError(t, err)
	assertYAML(t, "A: 1\nB: 1\n", got)
}

func TestLoadConfigStopsWhenCancelled(t *testing.T) {
	t.Parallel()

	fs := memFS(t, map[string]string{"/workloads/Leaf.yml": "SchemaVersion: 2018-07-01\nValue: 1\n"})
	w := newTestWalker(t, fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.ctx = ctx

	_, err := w.resolveRoot(decode(t, `A: {LoadConfig: {Path: Leaf.yml}}`).Mapping())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, w.scope.Depth())
}
