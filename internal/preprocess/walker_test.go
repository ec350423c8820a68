// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongodb/genny-sub000/internal/node"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "parameter default",
			doc: `
Threads: {^Parameter: {Name: Threads, Default: 4}}
`,
			want: `
Threads: 4
`,
		},
		{
			name: "parameter default is itself resolved",
			doc: `
Threads: {^Parameter: {Name: Threads, Default: {^NumExpr: {withExpression: "a * 2", andValues: {a: 8}}}}}
`,
			want: `
Threads: 16
`,
		},
		{
			name: "numexpr subtraction",
			doc: `
Value: {^NumExpr: {withExpression: "a - b", andValues: {a: 100, b: 25}}}
`,
			want: `
Value: 75
`,
		},
		{
			name: "numexpr inexact division is a float",
			doc: `
Value: {^NumExpr: {withExpression: "a / 4", andValues: {a: 10}}}
`,
			want: `
Value: 2.5
`,
		},
		{
			name: "numexpr with parameter operand",
			doc: `
Value:
  ^NumExpr:
    withExpression: "(docs + 1) * threads"
    andValues:
      docs: {^Parameter: {Name: Docs, Default: 9}}
      threads: 3
`,
			want: `
Value: 30
`,
		},
		{
			name: "format string with padding and nested expression",
			doc: `
Name:
  ^PreprocessorFormatString:
    format: "%s-%04d"
    withArgs:
    - Actor
    - {^NumExpr: {withExpression: "a * 2", andValues: {a: 21}}}
`,
			want: `
Name: Actor-0042
`,
		},
		{
			name: "format string with number for %s",
			doc: `
Name: {^PreprocessorFormatString: {format: "Actor_%s", withArgs: [{^NumExpr: {withExpression: "a + 1", andValues: {a: 1}}}]}}
`,
			want: `
Name: Actor_2
`,
		},
		{
			name: "format string %i is an integer verb",
			doc: `
Name: {^PreprocessorFormatString: {format: "Actor_%i", withArgs: [3]}}
`,
			want: `
Name: Actor_3
`,
		},
		{
			name: "format string integer verbs truncate floats",
			doc: `
Name: {^PreprocessorFormatString: {format: "%d/%s/%.1f", withArgs: [{^NumExpr: {withExpression: "a / 4", andValues: {a: 10}}}, 2.5, 3]}}
`,
			want: `
Name: 2/2.5/3.0
`,
		},
		{
			name: "format string literal percent",
			doc: `
Name: {^PreprocessorFormatString: {format: "%d%%", withArgs: [50]}}
`,
			want: `
Name: 50%
`,
		},
		{
			name: "format string argument containing a percent marker",
			doc: `
Name: {^PreprocessorFormatString: {format: "%s done", withArgs: ["100%!"]}}
`,
			want: `
Name: 100%! done
`,
		},
		{
			name: "flatten once splices one level",
			doc: `
Out:
  ^FlattenOnce: [1, "2", [3, "4"], {^FlattenOnce: [5, [6]]}]
`,
			want: `
Out: [1, "2", 3, "4", 5, 6]
`,
		},
		{
			name: "flatten once keeps deeper nesting",
			doc: `
Out: {^FlattenOnce: [1, [2, [3]]]}
`,
			want: `
Out: [1, 2, [3]]
`,
		},
		{
			name: "flatten once of a mapping returns its keys",
			doc: `
Out: {^FlattenOnce: {b: 1, a: 2}}
`,
			want: `
Out: [b, a]
`,
		},
		{
			name: "flatten once of a string returns its characters",
			doc: `
Out: {^FlattenOnce: abc}
`,
			want: `
Out: [a, b, c]
`,
		},
		{
			name: "flatten once of a parameter",
			doc: `
Out: {^FlattenOnce: {^Parameter: {Name: List, Default: [[1, 2], 3]}}}
`,
			want: `
Out: [1, 2, 3]
`,
		},
		{
			name: "client uri",
			doc: `
Clients:
  Default:
    URI: mongodb://localhost:27017
Actors:
- Name: A
  ClientURI: {^ClientURI: {Name: Default}}
`,
			want: `
Clients:
  Default:
    URI: mongodb://localhost:27017
Actors:
- Name: A
  ClientURI: mongodb://localhost:27017
`,
		},
		{
			name: "only active in phases",
			doc: `
Actors:
- Name: A
  Phases:
    OnlyActiveInPhases:
      Active: [1]
      NopInPhasesUpTo: 3
      PhaseConfig:
        Repeat: {^Parameter: {Name: Repeat, Default: 5}}
`,
			want: `
Actors:
- Name: A
  Phases:
  - {Nop: true}
  - {Repeat: 5}
  - {Nop: true}
  - {Nop: true}
`,
		},
		{
			name: "only active in phases with macro arguments",
			doc: `
Phases:
  OnlyActiveInPhases:
    Active: [0, {^NumExpr: {withExpression: "a + 1", andValues: {a: 1}}}]
    NopInPhasesUpTo: {^Parameter: {Name: Max, Default: 2}}
    PhaseConfig: {Duration: 1 minute}
`,
			want: `
Phases:
- {Duration: 1 minute}
- {Nop: true}
- {Duration: 1 minute}
`,
		},
		{
			name: "plain containers keep their order",
			doc: `
b: [3, {z: 1, y: 2}]
a: null
`,
			want: `
b: [3, {z: 1, y: 2}]
a: null
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := resolveYAML(t, nil, tt.doc)
			require.NoError(t, err)
			assertYAML(t, tt.want, got)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      string
		wantErr  error
		wantPath string
	}{
		{
			name:     "numexpr expression is not a string",
			doc:      `Value: {^NumExpr: {withExpression: 1}}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^NumExpr.withExpression",
		},
		{
			name:     "numexpr string operand",
			doc:      `Value: {^NumExpr: {withExpression: "a + 1", andValues: {a: "100"}}}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^NumExpr.andValues.a",
		},
		{
			name:     "numexpr unknown variable",
			doc:      `Value: {^NumExpr: {withExpression: "a + b", andValues: {a: 1}}}`,
			wantErr:  ErrUnboundReference,
			wantPath: "Value.^NumExpr",
		},
		{
			name:     "numexpr division by zero",
			doc:      `Value: {^NumExpr: {withExpression: "a / 0", andValues: {a: 1}}}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^NumExpr",
		},
		{
			name:     "numexpr syntax error",
			doc:      `Value: {^NumExpr: {withExpression: "a +"}}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^NumExpr",
		},
		{
			name:     "parameter without binding or default",
			doc:      `Value: {^Parameter: {Name: Missing}}`,
			wantErr:  ErrUnboundReference,
			wantPath: "Value.^Parameter",
		},
		{
			name:     "parameter with unknown field",
			doc:      `Value: {^Parameter: {Name: X, default: 1}}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^Parameter.default",
		},
		{
			name:     "format argument is a sequence",
			doc:      `Value: {^PreprocessorFormatString: {format: "%s", withArgs: [[1]]}}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^PreprocessorFormatString.withArgs[0]",
		},
		{
			name:     "format integer verb with string argument",
			doc:      `Value: {^PreprocessorFormatString: {format: "%d", withArgs: [x]}}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^PreprocessorFormatString.withArgs[0]",
		},
		{
			name:     "format unsupported verb",
			doc:      `Value: {^PreprocessorFormatString: {format: "%v", withArgs: [x]}}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^PreprocessorFormatString.format",
		},
		{
			name:     "format ends inside a verb",
			doc:      `Value: {^PreprocessorFormatString: {format: "100%", withArgs: []}}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^PreprocessorFormatString.format",
		},
		{
			name:     "format missing argument",
			doc:      `Value: {^PreprocessorFormatString: {format: "%s %s", withArgs: [x]}}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^PreprocessorFormatString",
		},
		{
			name:     "format extra argument",
			doc:      `Value: {^PreprocessorFormatString: {format: "%s", withArgs: [x, y]}}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^PreprocessorFormatString",
		},
		{
			name:     "flatten an integer",
			doc:      `Value: {^FlattenOnce: 1}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^FlattenOnce",
		},
		{
			name: "client uri for undefined client",
			doc: `
Clients:
  Default: {URI: mongodb://localhost}
Value: {^ClientURI: {Name: Missing}}
`,
			wantErr:  ErrUnboundReference,
			wantPath: "Value.^ClientURI",
		},
		{
			name: "client uri before clients",
			doc: `
Value: {^ClientURI: {Name: Default}}
Clients:
  Default: {URI: mongodb://localhost}
`,
			wantErr:  ErrUnboundReference,
			wantPath: "Value.^ClientURI",
		},
		{
			name:     "unknown template",
			doc:      `Actors: [{ActorFromTemplate: {TemplateName: Missing}}]`,
			wantErr:  ErrUnknownTemplate,
			wantPath: "Actors[0].ActorFromTemplate.TemplateName",
		},
		{
			name:     "unknown macro",
			doc:      `Value: {^Unknown: 1}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^Unknown",
		},
		{
			name:     "macro with siblings",
			doc:      `Value: {^Parameter: {Name: X, Default: 1}, Other: 2}`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Value.^Parameter",
		},
		{
			name: "active phase outside window",
			doc: `
Phases:
  OnlyActiveInPhases: {Active: [4], NopInPhasesUpTo: 3, PhaseConfig: {Repeat: 1}}
`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Phases.OnlyActiveInPhases.Active[0]",
		},
		{
			name:     "error path inside sequences",
			doc:      `Actors: [{Name: A, Phases: [{Repeat: {^NumExpr: {withExpression: 1}}}]}]`,
			wantErr:  ErrInvalidMacroArgument,
			wantPath: "Actors[0].Phases[0].Repeat.^NumExpr.withExpression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := resolveYAML(t, nil, tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var perr *Error
			require.True(t, errors.As(err, &perr), "error %v is not a *preprocess.Error", err)
			assert.Equal(t, tt.wantPath, perr.Path)
			assert.True(t, strings.HasPrefix(err.Error(), tt.wantPath+": "), "error %q does not start with its path", err)
		})
	}
}

func TestTemplateInstantiationsAreIsolated(t *testing.T) {
	t.Parallel()

	got, err := resolveYAML(t, nil, `
SchemaVersion: 2018-07-01
ActorTemplates:
- TemplateName: InsertTemplate
  Config:
    Name: {^Parameter: {Name: Name, Default: Unnamed}}
    Type: Insert
    Threads: {^Parameter: {Name: Threads, Default: 1}}
Actors:
- ActorFromTemplate:
    TemplateName: InsertTemplate
    TemplateParameters:
      Name: First
      Threads: 8
- ActorFromTemplate:
    TemplateName: InsertTemplate
    TemplateParameters:
      Name: Second
`)
	require.NoError(t, err)

	assertYAML(t, `
SchemaVersion: 2018-07-01
Actors:
- {Name: First, Type: Insert, Threads: 8}
- {Name: Second, Type: Insert, Threads: 1}
`, got)
}

func TestTemplateParametersResolveInCallerScope(t *testing.T) {
	t.Parallel()

	got, err := resolveYAML(t, nil, `
ActorTemplates:
- TemplateName: T
  Config:
    Name: {^Parameter: {Name: Name, Default: Unnamed}}
Actors:
- ActorFromTemplate:
    TemplateName: T
    TemplateParameters:
      # Name is not bound in the caller, so the default here applies and
      # the template's own default is never consulted.
      Name: {^Parameter: {Name: Name, Default: FromCaller}}
`)
	require.NoError(t, err)

	assertYAML(t, `
Actors:
- {Name: FromCaller}
`, got)
}

func TestLastTemplateRegistrationWins(t *testing.T) {
	t.Parallel()

	got, err := resolveYAML(t, nil, `
ActorTemplates:
- {TemplateName: T, Config: {Name: first}}
- {TemplateName: T, Config: {Name: second}}
Actors:
- ActorFromTemplate: {TemplateName: T}
`)
	require.NoError(t, err)
	assertYAML(t, `Actors: [{Name: second}]`, got)
}

func TestActivePhasesAreIndependent(t *testing.T) {
	t.Parallel()

	got, err := resolveYAML(t, nil, `
Phases:
  OnlyActiveInPhases: {Active: [1, 3], NopInPhasesUpTo: 3, PhaseConfig: {Repeat: 2}}
`)
	require.NoError(t, err)

	phases, _ := got.Get("Phases")
	require.Equal(t, 4, phases.Len())
	first, second := phases.Items()[1], phases.Items()[3]
	assert.True(t, node.Equal(first, second))
	assert.NotSame(t, first.Mapping(), second.Mapping())
}

func TestResolveIsIdempotentOnConcreteTrees(t *testing.T) {
	t.Parallel()

	src := `
SchemaVersion: 2018-07-01
Clients:
  Default: {URI: mongodb://localhost}
Actors:
- Name: A
  Type: Insert
  Threads: 2
  Phases:
  - {Repeat: 10, Document: {x: [1, 2.5, true, null, "s"]}}
  - {Nop: true}
`
	input := decode(t, src)
	got, err := resolveYAML(t, nil, src)
	require.NoError(t, err)
	assert.True(t, node.Equal(input, got), "resolved %v, want %v", got, input)

	again, err := newTestWalker(t, nil).resolveRoot(got.Mapping())
	require.NoError(t, err)
	assert.True(t, node.Equal(got, again))
}

func TestResolveDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	src := `
ActorTemplates:
- {TemplateName: T, Config: {Threads: {^Parameter: {Name: Threads, Default: 1}}}}
Actors:
- ActorFromTemplate: {TemplateName: T, TemplateParameters: {Threads: 3}}
`
	input := decode(t, src)
	_, err := newTestWalker(t, nil).resolveRoot(input.Mapping())
	require.NoError(t, err)
	assert.True(t, node.Equal(decode(t, src), input))
}
