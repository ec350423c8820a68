// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package numexpr

import (
	"errors"
	"testing"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name      string
		expr      string
		vars      map[string]Number
		want      Number
		wantError error
	}{
		{
			name: "subtraction of bound ints",
			expr: "a - b",
			vars: map[string]Number{"a": Int(100), "b": Int(25)},
			want: Int(75),
		},
		{
			name: "multiplication binds tighter than addition",
			expr: "a + b * 2",
			vars: map[string]Number{"a": Int(1), "b": Int(3)},
			want: Int(7),
		},
		{
			name: "parentheses",
			expr: "(a + b) * 2",
			vars: map[string]Number{"a": Int(1), "b": Int(3)},
			want: Int(8),
		},
		{
			name: "unary minus",
			expr: "-a + 10",
			vars: map[string]Number{"a": Int(4)},
			want: Int(6),
		},
		{
			name: "int and float mix to float",
			expr: "a * 1.5",
			vars: map[string]Number{"a": Int(4)},
			want: Float(6),
		},
		{
			name: "exact division stays int",
			expr: "a / 4",
			vars: map[string]Number{"a": Int(100)},
			want: Int(25),
		},
		{
			name: "inexact division becomes float",
			expr: "a / 4",
			vars: map[string]Number{"a": Int(10)},
			want: Float(2.5),
		},
		{
			name: "literals only",
			expr: "2 * 3 - 1",
			want: Int(5),
		},
		{
			name:      "integer division by zero",
			expr:      "a / b",
			vars:      map[string]Number{"a": Int(1), "b": Int(0)},
			wantError: ErrDivisionByZero,
		},
		{
			name:      "float division by zero",
			expr:      "a / 0.0",
			vars:      map[string]Number{"a": Float(1)},
			wantError: ErrDivisionByZero,
		},
		{
			name:      "unknown variable",
			expr:      "a + missing",
			vars:      map[string]Number{"a": Int(1)},
			wantError: ErrUnknownVariable,
		},
		{
			name:      "syntax error",
			expr:      "a +",
			vars:      map[string]Number{"a": Int(1)},
			wantError: ErrSyntax,
		},
		{
			name:      "comparison is not arithmetic",
			expr:      "a > 1",
			vars:      map[string]Number{"a": Int(1)},
			wantError: ErrUnsupported,
		},
		{
			name:      "string literal",
			expr:      `"x"`,
			wantError: ErrUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := e.Evaluate(tt.expr, tt.vars)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Fatalf("Evaluate(%q) error = %v, want %v", tt.expr, err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("Evaluate(%q) unexpected error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v (int=%v), want %v (int=%v)",
					tt.expr, got, got.IsInt(), tt.want, tt.want.IsInt())
			}
		})
	}
}

func TestEvaluatorCachesParsedExpressions(t *testing.T) {
	t.Parallel()

	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := range 3 {
		got, err := e.Evaluate("x * 2", map[string]Number{"x": Int(int64(i))})
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if got != Int(int64(i*2)) {
			t.Errorf("Evaluate() = %v, want %d", got, i*2)
		}
	}
	if n := e.cache.Len(); n != 1 {
		t.Errorf("cache holds %d entries, want 1", n)
	}

	uncached, err := New(DisableCache())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := uncached.Evaluate("1 + 1", nil); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if uncached.cache != nil {
		t.Error("DisableCache() left a cache in place")
	}
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	t.Parallel()

	c := newLRUCache[int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry was not evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}
